package chat

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/domain/wire"
)

func msg(id, sender, receiver, text string, read bool, createdAt string) Message {
	return Message{
		ID:         wire.Identifier(id),
		SenderID:   wire.Identifier(sender),
		ReceiverID: wire.Identifier(receiver),
		Text:       text,
		IsRead:     read,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestUpsertScenario(t *testing.T) {
	list, err := Upsert(nil, "u1", msg("m1", "u2", "u1", "hi", false, "2024-01-01T10:00:00.000Z"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, wire.Identifier("u2"), list[0].OtherUserID)
	assert.Equal(t, list[0].OtherUserID, list[0].ID)
	assert.Equal(t, 1, list[0].UnreadCount)
	assert.Equal(t, "hi", list[0].LastMessage.Text)
	assert.Empty(t, list[0].OtherUserName)

	list, err = Upsert(list, "u1", msg("m2", "u1", "u2", "hey", true, "2024-01-01T10:01:00.000Z"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hey", list[0].LastMessage.Text)
	assert.Equal(t, 1, list[0].UnreadCount)
}

func TestUpsertRequiresLocalIdentity(t *testing.T) {
	_, err := Upsert(nil, "", msg("m1", "u2", "u1", "hi", false, "2024-01-01T10:00:00.000Z"))
	assert.ErrorIs(t, err, ErrNoLocalIdentity)
	_, err = UpsertAll(nil, "", nil)
	assert.ErrorIs(t, err, ErrNoLocalIdentity)
	_, err = MarkRead(nil, "", "u2")
	assert.ErrorIs(t, err, ErrNoLocalIdentity)
}

func TestUpsertIdempotent(t *testing.T) {
	start := []Conversation{NewConversation("u3")}
	m := msg("m1", "u2", "u1", "hi", false, "2024-01-01T10:00:00.000Z")

	once, err := Upsert(start, "u1", m)
	require.NoError(t, err)
	twice, err := Upsert(once, "u1", m)
	require.NoError(t, err)

	count := 0
	for _, c := range twice {
		if c.OtherUserID == "u2" {
			count++
			assert.Equal(t, m, *c.LastMessage)
			assert.Equal(t, 1, c.UnreadCount)
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, once, twice)
}

func TestUpsertDoesNotMutateInput(t *testing.T) {
	start, err := Upsert(nil, "u1", msg("m1", "u2", "u1", "hi", false, "2024-01-01T10:00:00.000Z"))
	require.NoError(t, err)
	snapshot := append([]Conversation(nil), start...)

	_, err = Upsert(start, "u1", msg("m2", "u2", "u1", "again", false, "2024-01-01T10:05:00.000Z"))
	require.NoError(t, err)
	assert.Equal(t, snapshot, start)
}

func TestUpsertReplacesLastMessage(t *testing.T) {
	list, err := Upsert(nil, "u1", msg("m2", "u2", "u1", "newer", true, "2024-01-01T10:05:00.000Z"))
	require.NoError(t, err)
	older := msg("m1", "u2", "u1", "older", false, "2024-01-01T10:00:00.000Z")
	for i := 0; i < 2; i++ {
		list, err = Upsert(list, "u1", older)
		require.NoError(t, err)
	}
	require.Len(t, list, 1)
	assert.Equal(t, older, *list[0].LastMessage)
	assert.Equal(t, 1, list[0].UnreadCount)
}

func TestUpsertSortAndUnreadProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	users := []string{"u2", "u3", "u4", "u5"}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var list []Conversation
	unread := map[wire.Identifier]int{}
	for i := 0; i < 200; i++ {
		peer := users[rng.Intn(len(users))]
		sender, receiver := peer, "u1"
		if rng.Intn(2) == 0 {
			sender, receiver = "u1", peer
		}
		m := msg(fmt.Sprintf("m%d", i), sender, receiver, "x", rng.Intn(3) == 0, wire.FormatTime(base.Add(time.Duration(rng.Intn(10000))*time.Second)))

		next, err := Upsert(list, "u1", m)
		require.NoError(t, err)

		for _, c := range next {
			before := unread[c.OtherUserID]
			want := before
			if c.OtherUserID == wire.Identifier(peer) && m.IsIncoming("u1") && !m.IsRead {
				want++
			}
			assert.Equal(t, want, c.UnreadCount, "unread for %s at step %d", c.OtherUserID, i)
			unread[c.OtherUserID] = c.UnreadCount
		}
		for j := 1; j < len(next); j++ {
			assert.GreaterOrEqual(t, next[j-1].LastActivity(), next[j].LastActivity())
		}
		seen := map[wire.Identifier]bool{}
		for _, c := range next {
			assert.False(t, seen[c.OtherUserID], "duplicate conversation %s", c.OtherUserID)
			seen[c.OtherUserID] = true
			assert.Equal(t, c.OtherUserID, c.ID)
			if c.OtherUserID == wire.Identifier(peer) {
				assert.Equal(t, m, *c.LastMessage)
			}
		}
		list = next
	}
}

func TestMarkReadGoesThroughMergePath(t *testing.T) {
	list, err := UpsertAll(nil, "u1", []Message{
		msg("m1", "u2", "u1", "a", false, "2024-01-01T10:00:00.000Z"),
		msg("m2", "u2", "u1", "b", false, "2024-01-01T10:01:00.000Z"),
		msg("m3", "u3", "u1", "c", false, "2024-01-01T09:00:00.000Z"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, list[0].UnreadCount)

	list, err = MarkRead(list, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, wire.Identifier("u2"), list[0].OtherUserID)
	assert.Equal(t, 0, list[0].UnreadCount)
	assert.True(t, list[0].LastMessage.IsRead)
	assert.Equal(t, 1, list[1].UnreadCount)

	unchanged, err := MarkRead(list, "u1", "nobody")
	require.NoError(t, err)
	assert.Equal(t, list, unchanged)
}

func TestReplaceSummaryKeepsNewest(t *testing.T) {
	newer := msg("m2", "u2", "u1", "new", true, "2024-01-02T00:00:00.000Z")
	older := msg("m1", "u2", "u1", "old", true, "2024-01-01T00:00:00.000Z")

	list := ReplaceSummary(nil, Conversation{OtherUserID: "u2", OtherUserName: "Sam", LastMessage: &newer})
	list = ReplaceSummary(list, Conversation{OtherUserID: "u2", LastMessage: &older, UnreadCount: 4})
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].LastMessage.Text)
	assert.Equal(t, "Sam", list[0].OtherUserName)
	assert.Equal(t, wire.Identifier("u2"), list[0].ID)
}

func TestNewLocalMessage(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m, err := NewLocalMessage("u1", "u2", "  hello ", now)
	require.NoError(t, err)
	assert.True(t, m.IsLocal())
	assert.Equal(t, "hello", m.Text)
	assert.Equal(t, "2024-01-01T10:00:00.000Z", m.CreatedAt)
	assert.False(t, m.IsIncoming("u1"))

	_, err = NewLocalMessage("", "u2", "x", now)
	assert.ErrorIs(t, err, ErrNoLocalIdentity)
	_, err = NewLocalMessage("u1", "", "x", now)
	assert.ErrorIs(t, err, ErrReceiverMissing)
	_, err = NewLocalMessage("u1", "u2", "   ", now)
	assert.ErrorIs(t, err, ErrEmptyText)
}
