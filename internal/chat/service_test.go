package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/helpmesh/internal/domain"
)

func seed(t *testing.T, store *fakeStore, sender, receiver, content string, at time.Time) *domain.Message {
	t.Helper()
	msg, err := domain.NewMessage(sender, receiver, content, at)
	require.NoError(t, err)
	saved, err := store.Insert(context.Background(), msg)
	require.NoError(t, err)
	return saved
}

func TestGetConversationChronologicalOrder(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed(t, store, "alice", "bob", "first", base)
	seed(t, store, "bob", "alice", "second", base.Add(time.Minute))
	seed(t, store, "alice", "bob", "third", base.Add(2*time.Minute))
	seed(t, store, "alice", "carol", "unrelated", base.Add(3*time.Minute))

	msgs, err := svc.GetConversation(context.Background(), "alice", "bob", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
	assert.Equal(t, "third", msgs[2].Content)
}

func TestGetConversationLimitKeepsMostRecent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seed(t, store, "alice", "bob", "msg", base.Add(time.Duration(i)*time.Minute))
	}

	msgs, err := svc.GetConversation(context.Background(), "alice", "bob", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	// The two newest, oldest of the pair first.
	assert.Equal(t, base.Add(3*time.Minute), msgs[0].Timestamp)
	assert.Equal(t, base.Add(4*time.Minute), msgs[1].Timestamp)
}

func TestGetConversationWithSelfRejected(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)

	_, err := svc.GetConversation(context.Background(), "alice", "alice", 0)
	assert.ErrorIs(t, err, domain.ErrSelfMessage)
}

func TestMarkMessagesAsReadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed(t, store, "bob", "alice", "one", base)
	seed(t, store, "bob", "alice", "two", base.Add(time.Minute))
	seed(t, store, "alice", "bob", "reply", base.Add(2*time.Minute))

	ctx := context.Background()
	require.NoError(t, svc.MarkMessagesAsRead(ctx, "alice", "bob"))

	n, err := svc.GetUnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)

	// Bob's copy of alice's reply is untouched.
	n, err = svc.GetUnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// Second call changes nothing.
	require.NoError(t, svc.MarkMessagesAsRead(ctx, "alice", "bob"))
	n, err = svc.GetUnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	ctx := context.Background()

	msg := seed(t, store, "alice", "bob", "delete me", time.Now().UTC())

	// Receiver cannot delete, and the failure looks identical to a
	// missing message.
	err := svc.DeleteMessage(ctx, msg.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	err = svc.DeleteMessage(ctx, "no-such-id", "alice")
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	require.NoError(t, svc.DeleteMessage(ctx, msg.ID, "alice"))

	_, err = store.GetByID(ctx, msg.ID)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestDeleteConversationRemovesBothDirections(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed(t, store, "alice", "bob", "one", base)
	seed(t, store, "bob", "alice", "two", base.Add(time.Minute))
	seed(t, store, "alice", "carol", "keep", base.Add(2*time.Minute))

	n, err := svc.DeleteConversation(context.Background(), "bob", "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	msgs, err := svc.GetConversation(context.Background(), "alice", "carol", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestGetUserConversationsNewestFirst(t *testing.T) {
	store := newFakeStore()
	store.addUser("bob", "bob")
	store.addUser("carol", "carol")
	svc := NewService(store, time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed(t, store, "alice", "bob", "old thread", base)
	seed(t, store, "carol", "alice", "newer thread", base.Add(time.Minute))
	seed(t, store, "bob", "alice", "latest overall", base.Add(2*time.Minute))

	summaries, err := svc.GetUserConversations(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "bob", summaries[0].OtherUserID)
	assert.Equal(t, "latest overall", summaries[0].LastMessage.Content)
	assert.Equal(t, "bob", summaries[0].User.Username)

	assert.Equal(t, "carol", summaries[1].OtherUserID)
	assert.Equal(t, "newer thread", summaries[1].LastMessage.Content)
}
