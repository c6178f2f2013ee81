package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/observability"
)

// Delivery is the presence-aware delivery engine. A message is persisted
// first; only then is a live push attempted. Live delivery is at-most-once
// best-effort with no retry; durability rests on the store alone.
type Delivery struct {
	store    MessageStore
	registry *Registry
	timeout  time.Duration
}

func NewDelivery(store MessageStore, registry *Registry, timeout time.Duration) *Delivery {
	return &Delivery{store: store, registry: registry, timeout: timeout}
}

// Send validates, persists, and then pushes the message to the receiver's
// live session if one is registered. The returned status is "delivered" when
// the receiver was online and "saved" otherwise; persistence failures are
// returned before any delivery attempt is made.
func (d *Delivery) Send(ctx context.Context, senderID, receiverID, content string) (*domain.Message, string, error) {
	msg, err := domain.NewMessage(senderID, receiverID, content, time.Now().UTC())
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	saved, err := d.store.Insert(ctx, msg)
	if err != nil {
		return nil, "", fmt.Errorf("persist message: %w", err)
	}

	status := StatusSaved
	if sess, ok := d.registry.Lookup(receiverID); ok {
		sess.Emit(EventReceiveMessage, saved)
		status = StatusDelivered
	}

	observability.MessagesDeliveredTotal.WithLabelValues(status).Inc()
	return saved, status, nil
}

// RelayTyping forwards a typing indicator to the receiver's live session.
// Not persisted, not acknowledged; silently dropped when the receiver is
// offline.
func (d *Delivery) RelayTyping(senderID, receiverID string, isTyping bool) {
	if sess, ok := d.registry.Lookup(receiverID); ok {
		sess.Emit(EventUserTyping, UserTypingPayload{SenderID: senderID, IsTyping: isTyping})
	}
}
