package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/helpmesh/helpmesh/internal/domain"
)

const DefaultConversationLimit = 50

// MessageStore is the durable message record store. Implementations return
// conversation pages sorted by timestamp descending; the service reverses
// them to chronological order at the boundary.
type MessageStore interface {
	Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	Conversation(ctx context.Context, userID, otherID string, limit int64) ([]*domain.Message, error)
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	Summaries(ctx context.Context, userID string) ([]*domain.ConversationSummary, error)
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	Delete(ctx context.Context, id string) error
	DeleteConversation(ctx context.Context, userID, otherID string) (int64, error)
}

// Service is the conversation query engine. Every store call runs under a
// bounded timeout so a slow store cannot hang a connection's event loop.
type Service struct {
	store   MessageStore
	timeout time.Duration
}

func NewService(store MessageStore, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// GetConversation returns up to limit most recent messages between the pair,
// in chronological order.
func (s *Service) GetConversation(ctx context.Context, userID, otherID string, limit int64) ([]*domain.Message, error) {
	if userID == otherID {
		return nil, domain.ErrSelfMessage
	}
	if limit <= 0 {
		limit = DefaultConversationLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msgs, err := s.store.Conversation(ctx, userID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}

	// Store order is newest-first; callers get oldest-first.
	return lo.Reverse(msgs), nil
}

// GetUserConversations returns one summary per counterpart, most recently
// active first. Tie-break on identical timestamps follows store order.
func (s *Service) GetUserConversations(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summaries, err := s.store.Summaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch conversations: %w", err)
	}
	return summaries, nil
}

func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkMessagesAsRead flips the read flag on all unread messages from senderID
// to userID. Idempotent: repeated calls have no additional effect.
func (s *Service) MarkMessagesAsRead(ctx context.Context, userID, senderID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.MarkRead(ctx, userID, senderID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// DeleteMessage removes a message only when the requester is its sender. A
// missing message and a foreign message fail identically so callers cannot
// probe for existence.
func (s *Service) DeleteMessage(ctx context.Context, messageID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.store.GetByID(ctx, messageID)
	if err != nil {
		return domain.ErrMessageNotFound
	}

	if msg.SenderID != userID {
		return domain.ErrMessageNotFound
	}

	if err := s.store.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// DeleteConversation removes every message between the pair, in both
// directions. Either participant may invoke it.
func (s *Service) DeleteConversation(ctx context.Context, userID, otherID string) (int64, error) {
	if userID == otherID {
		return 0, domain.ErrSelfMessage
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.store.DeleteConversation(ctx, userID, otherID)
	if err != nil {
		return 0, fmt.Errorf("delete conversation: %w", err)
	}
	return n, nil
}
