package state

import (
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/gatecache/common"
)

// Guild is a guild as consumed and produced by the cache: the guild itself
// plus its channel, member, and presence lists.
type Guild struct {
	discord.Guild

	Channels  []discord.Channel
	Members   []discord.Member
	Presences []discord.Presence
}

// UnavailableGuild marks a guild that is reachable but whose data hasn't
// been synced yet.
type UnavailableGuild struct {
	ID discord.GuildID
}

// guildEntry is the stored form of a guild. Member and presence lists are
// replaced by the grow-only set of user IDs ever seen as a member or
// presence of the guild; the lists are reconstituted from the per-guild
// stores at fetch time. The channel list is embedded alongside the guild.
type guildEntry struct {
	guild       discord.Guild
	channels    []discord.Channel
	known       *common.Set[discord.UserID]
	unavailable bool
}

// Guild returns the cached guild with the given ID, with its member and
// presence lists reconstituted: every known user ID with a live member
// (resp. presence) record is included, members with their profile joined
// from the user store.
func (s *State) Guild(id discord.GuildID) (Guild, error) {
	e, ok := s.guilds.Get(id)
	if !ok {
		return Guild{}, ErrNotFound
	}

	g := Guild{Guild: e.guild, Channels: e.channels}

	if e.known == nil {
		return g, nil
	}

	members, _ := s.members.Get(id)
	presences, _ := s.presences.Get(id)

	for _, uid := range e.known.Values() {
		if members != nil {
			if m, ok := members.Get(uid); ok {
				g.Members = append(g.Members, s.hydrateMember(m))
			}
		}
		if presences != nil {
			if p, ok := presences.Get(uid); ok {
				g.Presences = append(g.Presences, p)
			}
		}
	}
	return g, nil
}

// Channels returns the stored channel list for the given guild. The list
// may be empty for a guild that hasn't synced its channels yet.
func (s *State) Channels(guildID discord.GuildID) ([]discord.Channel, error) {
	e, ok := s.guilds.Get(guildID)
	if !ok {
		return nil, ErrNotFound
	}
	return e.channels, nil
}

// Channel returns the channel with the given ID from the global channel
// store.
func (s *State) Channel(id discord.ChannelID) (discord.Channel, error) {
	ch, ok := s.channels.Get(id)
	if !ok {
		return discord.Channel{}, ErrNotFound
	}
	return ch, nil
}

func (s *State) upsertGuild(g Guild) {
	ids := make([]discord.UserID, 0, len(g.Members)+len(g.Presences))
	for _, m := range g.Members {
		ids = append(ids, m.User.ID)
	}
	for _, p := range g.Presences {
		ids = append(ids, p.User.ID)
	}

	stripped := g.Guild
	s.guilds.Upsert(g.ID, func(e guildEntry, ok bool) guildEntry {
		if !ok || e.known == nil {
			e.known = common.NewSet[discord.UserID]()
		}
		e.guild = mergeStruct(e.guild, stripped)
		e.unavailable = false
		e.known.Append(ids...)
		return e
	})

	for _, ch := range g.Channels {
		s.upsertChannel(ch)
	}
	for _, m := range g.Members {
		s.upsertMember(g.ID, m)
	}
	for _, p := range g.Presences {
		s.upsertPresence(g.ID, p)
	}
}

func (s *State) upsertUnavailableGuild(u UnavailableGuild) {
	s.guilds.Upsert(u.ID, func(e guildEntry, ok bool) guildEntry {
		if !ok {
			e = guildEntry{
				guild: discord.Guild{ID: u.ID},
				known: common.NewSet[discord.UserID](),
			}
		}
		e.unavailable = true
		return e
	})
}

func (s *State) upsertChannel(ch discord.Channel) {
	s.channels.Upsert(ch.ID, func(old discord.Channel, ok bool) discord.Channel {
		if ok {
			return mergeStruct(old, ch)
		}
		return ch
	})

	for _, u := range ch.DMRecipients {
		s.upsertUser(u)
	}

	if ch.GuildID.IsValid() {
		s.guilds.Modify(ch.GuildID, func(e guildEntry) guildEntry {
			// a guild that hasn't finished syncing has no channel list to
			// update; the full list arrives with the guild itself
			if e.unavailable {
				return e
			}
			e.channels = mergeByID(e.channels, ch, func(c discord.Channel) discord.ChannelID { return c.ID })
			return e
		})
	}
}

func (s *State) upsertRole(guildID discord.GuildID, r discord.Role) {
	if !guildID.IsValid() {
		return
	}
	s.guilds.Modify(guildID, func(e guildEntry) guildEntry {
		e.guild.Roles = mergeByID(e.guild.Roles, r, func(r discord.Role) discord.RoleID { return r.ID })
		return e
	})
}

func (s *State) upsertEmojis(guildID discord.GuildID, emojis []discord.Emoji) {
	if !guildID.IsValid() {
		return
	}
	// an emoji sync event is authoritative: replace, don't merge
	s.guilds.Modify(guildID, func(e guildEntry) guildEntry {
		e.guild.Emojis = emojis
		return e
	})
}

// RemoveGuild drops a guild and its member and presence stores.
func (s *State) RemoveGuild(id discord.GuildID) {
	s.guilds.Remove(id)
	s.members.Remove(id)
	s.presences.Remove(id)
}

// RemoveChannel drops a channel from the global store and from its guild's
// channel list, if any.
func (s *State) RemoveChannel(id discord.ChannelID) {
	ch, ok := s.channels.Get(id)
	s.channels.Remove(id)

	if ok && ch.GuildID.IsValid() {
		s.guilds.Modify(ch.GuildID, func(e guildEntry) guildEntry {
			e.channels = deleteByID(e.channels, id, func(c discord.Channel) discord.ChannelID { return c.ID })
			return e
		})
	}
}
