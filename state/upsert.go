package state

import (
	"github.com/diamondburned/arikawa/v3/discord"
)

// Upsert applies an entity to the cache, dispatching on its kind and merging
// it field-by-field into any existing entry. Extra snowflake keys
// disambiguate nested stores:
//
//	Upsert(member, guildID)
//	Upsert(members, guildID)
//	Upsert(presence, guildID)        // optional, falls back to the presence's own guild
//	Upsert(role, guildID)
//	Upsert(emojis, guildID)          // guild emoji sync, replaces wholesale
//	Upsert(emoji, messageID, userID) // single reaction add
//
// Entities of kinds the cache doesn't track, and entities missing a required
// key, are silently ignored: the gateway can deliver updates referencing
// parents the cache has never seen, and that is not an error.
func (s *State) Upsert(v any, keys ...discord.Snowflake) {
	key := func(i int) discord.Snowflake {
		if i < len(keys) {
			return keys[i]
		}
		return 0
	}

	switch v := v.(type) {
	case Guild:
		s.upsertGuild(v)
	case UnavailableGuild:
		s.upsertUnavailableGuild(v)

	case discord.Channel:
		s.upsertChannel(v)
	case []discord.Channel:
		for _, ch := range v {
			s.upsertChannel(ch)
		}

	case discord.User:
		s.upsertUser(v)

	case discord.Member:
		s.upsertMember(discord.GuildID(key(0)), v)
	case []discord.Member:
		guildID := discord.GuildID(key(0))
		for _, m := range v {
			s.upsertMember(guildID, m)
		}

	case discord.Presence:
		s.upsertPresence(discord.GuildID(key(0)), v)

	case discord.Message:
		s.upsertMessage(v)
	case []discord.Message:
		for _, msg := range v {
			s.upsertMessage(msg)
		}

	case discord.Role:
		s.upsertRole(discord.GuildID(key(0)), v)

	case []discord.Emoji:
		s.upsertEmojis(discord.GuildID(key(0)), v)
	case discord.Emoji:
		s.upsertReaction(v, discord.MessageID(key(0)), discord.UserID(key(1)))
	}
}
