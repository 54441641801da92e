package bot

import (
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"

	"github.com/starshine-sys/gatecache/state"
)

type Config struct {
	Auth  AuthConfig  `toml:"auth"`
	Cache CacheConfig `toml:"cache"`
}

type AuthConfig struct {
	Discord string `toml:"discord"`
	Sentry  string `toml:"sentry"`
}

// CacheConfig sets per-entity cache lifetimes, as Go duration strings. A
// zero or missing value disables expiry for that kind. Member and presence
// caches share the guild lifetime.
type CacheConfig struct {
	GuildTTL   duration `toml:"guild_ttl"`
	ChannelTTL duration `toml:"channel_ttl"`
	UserTTL    duration `toml:"user_ttl"`
	MessageTTL duration `toml:"message_ttl"`
}

func (c CacheConfig) Options() state.Options {
	return state.Options{
		GuildTTL:   time.Duration(c.GuildTTL),
		ChannelTTL: time.Duration(c.ChannelTTL),
		UserTTL:    time.Duration(c.UserTTL),
		MessageTTL: time.Duration(c.MessageTTL),
	}
}

type duration time.Duration

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	*d = duration(v)
	return err
}

func ReadConfig(path string) (c Config, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "read config file")
	}

	err = toml.Unmarshal(b, &c)
	if err != nil {
		return c, errors.Wrap(err, "unmarshal config")
	}

	// fall back to the environment for the token
	if c.Auth.Discord == "" {
		c.Auth.Discord = os.Getenv("TOKEN")
	}
	if c.Auth.Discord == "" {
		return c, errors.New("no token in config file or $TOKEN")
	}
	return c, nil
}
