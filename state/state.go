// Package state implements a TTL-bounded, in-process cache of gateway
// entities. It is fed partial objects by an event relay and reconstitutes
// denormalized entities (member lists, user profiles) with joins at read
// time, so the same user or member is never stored twice.
package state

import (
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/gatecache/ttl"
)

// ErrNotFound is returned by all fetch methods when an entity is not cached,
// or its cache entry has expired. It is the only error this package returns.
const ErrNotFound = errors.Sentinel("entity not found in state")

// Options sets per-entity cache lifetimes. A zero duration means entries of
// that kind never expire. Member and presence stores use GuildTTL.
type Options struct {
	GuildTTL   time.Duration
	ChannelTTL time.Duration
	UserTTL    time.Duration
	MessageTTL time.Duration
}

// State is a cache of guilds, channels, users, messages, members, and
// presences. All methods are safe for concurrent use. Upserts of entities
// referencing parents the cache has never seen are silently ignored, as the
// gateway gives no ordering guarantee.
type State struct {
	guilds   *ttl.Map[discord.GuildID, guildEntry]
	channels *ttl.Map[discord.ChannelID, discord.Channel]
	users    *ttl.Map[discord.UserID, discord.User]
	messages *ttl.Map[discord.MessageID, discord.Message]

	members   *ttl.Map[discord.GuildID, *ttl.Map[discord.UserID, discord.Member]]
	presences *ttl.Map[discord.GuildID, *ttl.Map[discord.UserID, discord.Presence]]

	guildTTL time.Duration

	selfMu sync.RWMutex
	self   discord.UserID

	// serializes the one mutation of a nested list element in place:
	// bumping a reaction's count on a cached message
	reactionMu sync.Mutex
}

// New returns an empty State.
func New(opts Options) *State {
	return &State{
		guilds:   ttl.NewMap[discord.GuildID, guildEntry](opts.GuildTTL),
		channels: ttl.NewMap[discord.ChannelID, discord.Channel](opts.ChannelTTL),
		users:    ttl.NewMap[discord.UserID, discord.User](opts.UserTTL),
		messages: ttl.NewMap[discord.MessageID, discord.Message](opts.MessageTTL),

		members:   ttl.NewMap[discord.GuildID, *ttl.Map[discord.UserID, discord.Member]](opts.GuildTTL),
		presences: ttl.NewMap[discord.GuildID, *ttl.Map[discord.UserID, discord.Presence]](opts.GuildTTL),

		guildTTL: opts.GuildTTL,
	}
}

// SetSelf records the bot's own user ID, used for the "me" flag on
// reactions. It is normally called once, from the ready event.
func (s *State) SetSelf(id discord.UserID) {
	s.selfMu.Lock()
	s.self = id
	s.selfMu.Unlock()
}

// Self returns the bot's own user ID, if known.
func (s *State) Self() discord.UserID {
	s.selfMu.RLock()
	defer s.selfMu.RUnlock()
	return s.self
}

// Prune drops expired entries from every store. Expiry is lazy, so this is
// purely a memory optimization.
func (s *State) Prune() (n int) {
	n += s.guilds.Prune()
	n += s.channels.Prune()
	n += s.users.Prune()
	n += s.messages.Prune()
	n += s.members.Prune()
	n += s.presences.Prune()

	for _, inner := range s.members.Values() {
		n += inner.Prune()
	}
	for _, inner := range s.presences.Values() {
		n += inner.Prune()
	}
	return n
}
