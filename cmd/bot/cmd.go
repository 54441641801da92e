package bot

import (
	"os"
	"os/signal"

	"emperror.dev/errors"
	"github.com/getsentry/sentry-go"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/gatecache/bot"
	"github.com/starshine-sys/gatecache/common"
	"github.com/starshine-sys/gatecache/common/log"
)

var Command = &cli.Command{
	Name:   "bot",
	Usage:  "Run the demo bot",
	Action: run,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.toml",
			Usage: "Path to the config file",
		},
	},
}

func run(c *cli.Context) error {
	conf, err := bot.ReadConfig(c.String("config"))
	if err != nil {
		return errors.Wrap(err, "reading config")
	}

	if conf.Auth.Sentry != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:     conf.Auth.Sentry,
			Release: common.Version(),
		})
		if err != nil {
			log.Fatalf("setting up sentry: %v", err)
		}
	}

	b := bot.New(conf)

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
	defer cancel()

	if err := b.Open(ctx); err != nil {
		return errors.Wrap(err, "opening gateway connection")
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Errorf("closing gateway connection: %v", err)
		}
	}()

	log.Info("connected, caching gateway events until interrupted")

	<-ctx.Done()
	return nil
}
