// Package bot wires a gateway session to the entity cache and the wait-for
// registry.
package bot

import (
	"context"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/diamondburned/arikawa/v3/utils/ws"
	"github.com/getsentry/sentry-go"

	"github.com/starshine-sys/gatecache/common/log"
	"github.com/starshine-sys/gatecache/events"
	"github.com/starshine-sys/gatecache/handler"
	"github.com/starshine-sys/gatecache/state"
)

const Intents = gateway.IntentGuilds |
	gateway.IntentGuildMembers |
	gateway.IntentGuildEmojis |
	gateway.IntentGuildPresences |
	gateway.IntentGuildMessages |
	gateway.IntentGuildMessageReactions |
	gateway.IntentDirectMessages |
	gateway.IntentDirectMessageReactions

type Bot struct {
	Session  *session.Session
	State    *state.State
	Registry *handler.Registry

	Config Config
}

// New creates a new Bot. The session is not opened yet.
func New(c Config) *Bot {
	// set up debug logging
	ws.WSDebug = log.Debug
	ws.WSError = func(err error) {
		log.SugaredLogger.Error("ws error: ", err)
	}

	b := &Bot{
		Session:  session.NewWithIntents("Bot "+c.Auth.Discord, Intents),
		State:    state.New(c.Cache.Options()),
		Registry: handler.New(),
		Config:   c,
	}

	h := events.New(b.State, b.Registry)
	if c.Auth.Sentry != "" {
		h.Hub = sentry.CurrentHub()
	}
	b.Session.AddHandler(h.Handle)

	return b
}

func (b *Bot) Open(ctx context.Context) error {
	log.Debug("opening gateway connection")

	return b.Session.Open(ctx)
}

func (b *Bot) Close() error {
	return b.Session.Close()
}
