package state

import (
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/gatecache/ttl"
)

// Member returns the cached member for the given guild and user, with the
// authoritative user profile joined from the user store. If the user record
// is absent the member is returned with whatever user view it was cached
// with.
func (s *State) Member(guildID discord.GuildID, userID discord.UserID) (discord.Member, error) {
	members, ok := s.members.Get(guildID)
	if !ok {
		return discord.Member{}, ErrNotFound
	}

	m, ok := members.Get(userID)
	if !ok {
		return discord.Member{}, ErrNotFound
	}
	return s.hydrateMember(m), nil
}

// Presence returns the cached presence for the given guild and user.
func (s *State) Presence(guildID discord.GuildID, userID discord.UserID) (discord.Presence, error) {
	presences, ok := s.presences.Get(guildID)
	if !ok {
		return discord.Presence{}, ErrNotFound
	}

	p, ok := presences.Get(userID)
	if !ok {
		return discord.Presence{}, ErrNotFound
	}
	return p, nil
}

// User returns the user with the given ID from the global user store.
func (s *State) User(id discord.UserID) (discord.User, error) {
	u, ok := s.users.Get(id)
	if !ok {
		return discord.User{}, ErrNotFound
	}
	return u, nil
}

// hydrateMember joins the authoritative user record on top of the member's
// cached user view.
func (s *State) hydrateMember(m discord.Member) discord.Member {
	if u, ok := s.users.Get(m.User.ID); ok {
		m.User = mergeStruct(m.User, u)
	}
	return m
}

// memberStore returns the per-guild member store, creating it if needed.
func (s *State) memberStore(guildID discord.GuildID) (inner *ttl.Map[discord.UserID, discord.Member]) {
	s.members.Upsert(guildID, func(old *ttl.Map[discord.UserID, discord.Member], ok bool) *ttl.Map[discord.UserID, discord.Member] {
		if ok {
			inner = old
			return old
		}
		inner = ttl.NewMap[discord.UserID, discord.Member](s.guildTTL)
		return inner
	})
	return inner
}

// presenceStore returns the per-guild presence store, creating it if needed.
func (s *State) presenceStore(guildID discord.GuildID) (inner *ttl.Map[discord.UserID, discord.Presence]) {
	s.presences.Upsert(guildID, func(old *ttl.Map[discord.UserID, discord.Presence], ok bool) *ttl.Map[discord.UserID, discord.Presence] {
		if ok {
			inner = old
			return old
		}
		inner = ttl.NewMap[discord.UserID, discord.Presence](s.guildTTL)
		return inner
	})
	return inner
}

func (s *State) upsertMember(guildID discord.GuildID, m discord.Member) {
	if !guildID.IsValid() || !m.User.ID.IsValid() {
		// a member without a user can't be keyed; a member without a guild
		// can't be placed
		return
	}

	s.upsertUser(m.User)

	// store the member with the user stripped to its ID; the profile is
	// joined back from the user store at read time
	uid := m.User.ID
	m.User = discord.User{ID: uid}

	s.memberStore(guildID).Upsert(uid, func(old discord.Member, ok bool) discord.Member {
		if ok {
			return mergeStruct(old, m)
		}
		return m
	})

	s.addKnownUser(guildID, uid)
}

func (s *State) upsertPresence(guildID discord.GuildID, p discord.Presence) {
	if !guildID.IsValid() {
		guildID = p.GuildID
	}
	if !guildID.IsValid() || !p.User.ID.IsValid() {
		return
	}

	s.presenceStore(guildID).Upsert(p.User.ID, func(old discord.Presence, ok bool) discord.Presence {
		if ok {
			return mergeStruct(old, p)
		}
		return p
	})

	s.addKnownUser(guildID, p.User.ID)
}

func (s *State) upsertUser(u discord.User) {
	if !u.ID.IsValid() {
		return
	}

	var merged discord.User
	s.users.Upsert(u.ID, func(old discord.User, ok bool) discord.User {
		if ok {
			merged = mergeStruct(old, u)
		} else {
			merged = u
		}
		return merged
	})

	// refresh the cached user view on every member record for this user, so
	// raw member reads stay consistent with the user store
	for _, inner := range s.members.Values() {
		inner.Modify(u.ID, func(m discord.Member) discord.Member {
			m.User = mergeStruct(m.User, merged)
			return m
		})
	}
}

// addKnownUser adds a user ID to a guild's membership index. The index only
// grows; it bounds which users the guild's reconstituted lists include.
func (s *State) addKnownUser(guildID discord.GuildID, userID discord.UserID) {
	s.guilds.Modify(guildID, func(e guildEntry) guildEntry {
		if e.known != nil {
			e.known.Add(userID)
		}
		return e
	})
}

// RemoveMember drops a member and their presence from a guild's stores. The
// membership index is left as is.
func (s *State) RemoveMember(guildID discord.GuildID, userID discord.UserID) {
	if members, ok := s.members.Get(guildID); ok {
		members.Remove(userID)
	}
	if presences, ok := s.presences.Get(guildID); ok {
		presences.Remove(userID)
	}
}
