// Package events relays gateway events into the entity cache and the
// wait-for registry.
package events

import (
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/getsentry/sentry-go"

	"github.com/starshine-sys/gatecache/common/log"
	"github.com/starshine-sys/gatecache/handler"
	"github.com/starshine-sys/gatecache/state"
)

// Handler feeds every gateway event into the cache, then offers it to the
// registry. Register Handle on a session.
type Handler struct {
	State    *state.State
	Registry *handler.Registry

	// Hub receives recovered panics, if set.
	Hub *sentry.Hub
}

// New returns a Handler feeding st and reg.
func New(st *state.State, reg *handler.Registry) *Handler {
	return &Handler{State: st, Registry: reg}
}

// Handle routes a single gateway event. A panicking consumer is recovered
// and reported, never propagated into the gateway read loop.
func (h *Handler) Handle(ev interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("panic handling %T: %v", ev, rec)
			if h.Hub != nil {
				h.Hub.Recover(rec)
			}
		}
	}()

	h.apply(ev)
	h.Registry.Call(ev)
}

// apply updates the cache for the events it tracks. Anything else falls
// through: unknown events still reach the registry, the cache just has
// nothing to do for them.
func (h *Handler) apply(ev interface{}) {
	switch ev := ev.(type) {
	case *gateway.ReadyEvent:
		h.State.SetSelf(ev.User.ID)
		h.State.Upsert(ev.User)
		for i := range ev.Guilds {
			h.guildCreate(&ev.Guilds[i])
		}

	case *gateway.GuildCreateEvent:
		h.guildCreate(ev)
	case *gateway.GuildUpdateEvent:
		h.State.Upsert(state.Guild{Guild: ev.Guild})
	case *gateway.GuildDeleteEvent:
		if ev.Unavailable {
			h.State.Upsert(state.UnavailableGuild{ID: ev.ID})
		} else {
			h.State.RemoveGuild(ev.ID)
		}

	case *gateway.ChannelCreateEvent:
		h.State.Upsert(ev.Channel)
	case *gateway.ChannelUpdateEvent:
		h.State.Upsert(ev.Channel)
	case *gateway.ChannelDeleteEvent:
		h.State.RemoveChannel(ev.ID)

	case *gateway.GuildMemberAddEvent:
		h.State.Upsert(ev.Member, discord.Snowflake(ev.GuildID))
	case *gateway.GuildMemberUpdateEvent:
		h.State.Upsert(discord.Member{
			User:    ev.User,
			Nick:    ev.Nick,
			RoleIDs: ev.RoleIDs,
		}, discord.Snowflake(ev.GuildID))
	case *gateway.GuildMemberRemoveEvent:
		h.State.RemoveMember(ev.GuildID, ev.User.ID)
	case *gateway.GuildMembersChunkEvent:
		h.State.Upsert(ev.Members, discord.Snowflake(ev.GuildID))
		for _, p := range ev.Presences {
			h.State.Upsert(p, discord.Snowflake(ev.GuildID))
		}

	case *gateway.PresenceUpdateEvent:
		h.State.Upsert(ev.Presence)

	case *gateway.GuildRoleCreateEvent:
		h.State.Upsert(ev.Role, discord.Snowflake(ev.GuildID))
	case *gateway.GuildRoleUpdateEvent:
		h.State.Upsert(ev.Role, discord.Snowflake(ev.GuildID))
	case *gateway.GuildEmojisUpdateEvent:
		h.State.Upsert(ev.Emojis, discord.Snowflake(ev.GuildID))

	case *gateway.MessageCreateEvent:
		h.State.Upsert(ev.Message)
	case *gateway.MessageUpdateEvent:
		h.State.Upsert(ev.Message)
	case *gateway.MessageDeleteEvent:
		h.State.RemoveMessage(ev.ID)
	case *gateway.MessageReactionAddEvent:
		h.State.Upsert(ev.Emoji, discord.Snowflake(ev.MessageID), discord.Snowflake(ev.UserID))
	}
}

func (h *Handler) guildCreate(ev *gateway.GuildCreateEvent) {
	if ev.Unavailable {
		h.State.Upsert(state.UnavailableGuild{ID: ev.ID})
		return
	}

	h.State.Upsert(state.Guild{
		Guild:     ev.Guild,
		Channels:  ev.Channels,
		Members:   ev.Members,
		Presences: ev.Presences,
	})
}
