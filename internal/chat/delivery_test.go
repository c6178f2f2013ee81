package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/helpmesh/internal/domain"
)

func newDelivery(store *fakeStore) (*Delivery, *Registry) {
	registry := NewRegistry()
	return NewDelivery(store, registry, time.Second), registry
}

func TestSendPersistsAndDeliversWhenReceiverOnline(t *testing.T) {
	store := newFakeStore()
	delivery, registry := newDelivery(store)

	receiver := NewSession("sid-r", "bob", nil)
	registry.Register(receiver)

	msg, status, err := delivery.Send(context.Background(), "alice", "bob", "hi bob")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, status)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.IsRead)

	// Persisted regardless of delivery.
	saved, err := store.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi bob", saved.Content)

	// The receiver's session got a receive_message frame with the saved
	// message, id included.
	var env Envelope
	require.NoError(t, json.Unmarshal(<-receiver.SendQueue, &env))
	assert.Equal(t, EventReceiveMessage, env.Event)

	var delivered domain.Message
	require.NoError(t, json.Unmarshal(env.Data, &delivered))
	assert.Equal(t, msg.ID, delivered.ID)
	assert.Equal(t, "alice", delivered.SenderID)
}

func TestSendSavesWhenReceiverOffline(t *testing.T) {
	store := newFakeStore()
	delivery, _ := newDelivery(store)

	msg, status, err := delivery.Send(context.Background(), "alice", "bob", "hi bob")
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)

	_, err = store.GetByID(context.Background(), msg.ID)
	assert.NoError(t, err)
}

func TestSendPersistFailureSkipsDelivery(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("store down")
	delivery, registry := newDelivery(store)

	receiver := NewSession("sid-r", "bob", nil)
	registry.Register(receiver)

	_, _, err := delivery.Send(context.Background(), "alice", "bob", "hi bob")
	require.Error(t, err)

	// No live push without a persisted message.
	assert.Empty(t, receiver.SendQueue)
}

func TestSendRejectsInvalidMessages(t *testing.T) {
	store := newFakeStore()
	delivery, _ := newDelivery(store)
	ctx := context.Background()

	_, _, err := delivery.Send(ctx, "alice", "alice", "hi me")
	assert.ErrorIs(t, err, domain.ErrSelfMessage)

	_, _, err = delivery.Send(ctx, "alice", "bob", "")
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)

	big := make([]byte, domain.MaxMessageSize+1)
	for i := range big {
		big[i] = 'a'
	}
	_, _, err = delivery.Send(ctx, "alice", "bob", string(big))
	assert.ErrorIs(t, err, domain.ErrMessageTooLarge)

	assert.Empty(t, store.msgs, "rejected messages must not be persisted")
}

func TestRelayTypingOnline(t *testing.T) {
	delivery, registry := newDelivery(newFakeStore())

	receiver := NewSession("sid-r", "bob", nil)
	registry.Register(receiver)

	delivery.RelayTyping("alice", "bob", true)

	var env Envelope
	require.NoError(t, json.Unmarshal(<-receiver.SendQueue, &env))
	assert.Equal(t, EventUserTyping, env.Event)

	var p UserTypingPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "alice", p.SenderID)
	assert.True(t, p.IsTyping)
}

func TestRelayTypingOfflineIsNoop(t *testing.T) {
	delivery, _ := newDelivery(newFakeStore())

	// Nothing to assert beyond not panicking; typing is fire-and-forget.
	delivery.RelayTyping("alice", "bob", true)
}
