package state

import (
	"github.com/diamondburned/arikawa/v3/discord"
)

// Message returns the cached message with the given ID.
func (s *State) Message(id discord.MessageID) (discord.Message, error) {
	msg, ok := s.messages.Get(id)
	if !ok {
		return discord.Message{}, ErrNotFound
	}
	return msg, nil
}

func (s *State) upsertMessage(msg discord.Message) {
	s.messages.Upsert(msg.ID, func(old discord.Message, ok bool) discord.Message {
		if ok {
			return mergeStruct(old, msg)
		}
		return msg
	})

	// keep active conversations resident
	s.channels.Touch(msg.ChannelID)
	if msg.GuildID.IsValid() {
		s.guilds.Touch(msg.GuildID)
	}
}

// upsertReaction applies a single reaction add to a cached message: the
// first reaction with a given emoji name creates an entry with count 1,
// repeats bump the count and complete the emoji's metadata. "me" is set when
// the reacting user is the bot itself. Unknown messages are ignored.
func (s *State) upsertReaction(emoji discord.Emoji, messageID discord.MessageID, userID discord.UserID) {
	me := userID.IsValid() && userID == s.Self()

	// reactions are mutated inside the stored message's list rather than
	// replaced wholesale, so this path is serialized against itself
	s.reactionMu.Lock()
	defer s.reactionMu.Unlock()

	s.messages.Modify(messageID, func(msg discord.Message) discord.Message {
		reactions := make([]discord.Reaction, len(msg.Reactions))
		copy(reactions, msg.Reactions)

		for i := range reactions {
			if reactions[i].Emoji.Name == emoji.Name {
				reactions[i].Count++
				if me {
					reactions[i].Me = true
				}
				reactions[i].Emoji = mergeStruct(reactions[i].Emoji, emoji)

				msg.Reactions = reactions
				return msg
			}
		}

		msg.Reactions = append(reactions, discord.Reaction{
			Count: 1,
			Me:    me,
			Emoji: emoji,
		})
		return msg
	})
}

// RemoveMessage drops a message from the cache.
func (s *State) RemoveMessage(id discord.MessageID) {
	s.messages.Remove(id)
}
