package events

import (
	"context"
	"testing"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starshine-sys/gatecache/handler"
	"github.com/starshine-sys/gatecache/state"
)

func testHandler() (*Handler, *state.State, *handler.Registry) {
	st := state.New(state.Options{})
	reg := handler.New()
	return New(st, reg), st, reg
}

func TestGuildCreate(t *testing.T) {
	h, st, _ := testHandler()

	h.Handle(&gateway.GuildCreateEvent{
		Guild:    discord.Guild{ID: 10, Name: "test"},
		Channels: []discord.Channel{{ID: 1, GuildID: 10}},
		Members:  []discord.Member{{User: discord.User{ID: 100, Username: "u"}}},
	})

	g, err := st.Guild(10)
	require.NoError(t, err)
	assert.Equal(t, "test", g.Name)
	assert.Len(t, g.Channels, 1)
	assert.Len(t, g.Members, 1)
}

func TestUnavailableGuildCreate(t *testing.T) {
	h, st, _ := testHandler()

	h.Handle(&gateway.GuildCreateEvent{
		Guild:       discord.Guild{ID: 10},
		Unavailable: true,
	})
	h.Handle(&gateway.ChannelCreateEvent{
		Channel: discord.Channel{ID: 1, GuildID: 10},
	})

	chs, err := st.Channels(10)
	require.NoError(t, err)
	assert.Empty(t, chs)
}

func TestReadySetsSelf(t *testing.T) {
	h, st, _ := testHandler()

	h.Handle(&gateway.ReadyEvent{
		User: discord.User{ID: 999, Username: "me"},
	})

	assert.Equal(t, discord.UserID(999), st.Self())

	u, err := st.User(999)
	require.NoError(t, err)
	assert.Equal(t, "me", u.Username)
}

func TestReactionAdd(t *testing.T) {
	h, st, _ := testHandler()

	h.Handle(&gateway.MessageCreateEvent{
		Message: discord.Message{ID: 1, ChannelID: 2},
	})
	h.Handle(&gateway.MessageReactionAddEvent{
		MessageID: 1,
		ChannelID: 2,
		UserID:    100,
		Emoji:     discord.Emoji{Name: "🐈"},
	})

	msg, err := st.Message(1)
	require.NoError(t, err)
	require.Len(t, msg.Reactions, 1)
	assert.Equal(t, 1, msg.Reactions[0].Count)
}

func TestDeleteEvents(t *testing.T) {
	h, st, _ := testHandler()

	h.Handle(&gateway.GuildCreateEvent{Guild: discord.Guild{ID: 10}})
	h.Handle(&gateway.MessageCreateEvent{Message: discord.Message{ID: 1, ChannelID: 2}})

	h.Handle(&gateway.MessageDeleteEvent{ID: 1, ChannelID: 2})
	_, err := st.Message(1)
	assert.ErrorIs(t, err, state.ErrNotFound)

	h.Handle(&gateway.GuildDeleteEvent{ID: 10})
	_, err = st.Guild(10)
	assert.ErrorIs(t, err, state.ErrNotFound)

	// an unavailable "delete" keeps the guild as a stub instead
	h.Handle(&gateway.GuildCreateEvent{Guild: discord.Guild{ID: 11}})
	h.Handle(&gateway.GuildDeleteEvent{ID: 11, Unavailable: true})
	_, err = st.Guild(11)
	assert.NoError(t, err)
}

func TestEventsReachRegistry(t *testing.T) {
	h, _, reg := testHandler()

	go func() {
		time.Sleep(10 * time.Millisecond)
		h.Handle(&gateway.MessageCreateEvent{
			Message: discord.Message{ID: 1, ChannelID: 2, Content: "hi"},
		})
	}()

	ev, ok := handler.WaitFor(context.Background(), reg, func(ev *gateway.MessageCreateEvent) bool {
		return ev.ChannelID == 2
	})
	require.True(t, ok)
	assert.Equal(t, "hi", ev.Content)
}

func TestHandleRecovers(t *testing.T) {
	h, _, reg := testHandler()

	handler.Add(reg, handler.Options{Count: 1}, func(*gateway.MessageCreateEvent) bool {
		panic("consumer bug")
	})

	assert.NotPanics(t, func() {
		h.Handle(&gateway.MessageCreateEvent{})
	})
}

func TestUnknownEventIgnored(t *testing.T) {
	h, _, _ := testHandler()

	assert.NotPanics(t, func() {
		h.Handle(&gateway.TypingStartEvent{})
	})
}
