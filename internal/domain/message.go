package domain

import (
	"strings"
	"time"
)

const MaxMessageSize = 5000

// Message invariants:
// 1. Sender and receiver are never equal.
// 2. Content is non-empty and bounded by MaxMessageSize.
// 3. Immutable after creation except for IsRead and deletion.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	IsRead     bool      `json:"isRead"`
}

func NewMessage(senderID, receiverID, content string, now time.Time) (*Message, error) {
	if senderID == "" || receiverID == "" || strings.TrimSpace(content) == "" {
		return nil, ErrInvalidMessage
	}

	if senderID == receiverID {
		return nil, ErrSelfMessage
	}

	if len(content) > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}

	return &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  now,
	}, nil
}

// UserSummary is the counterpart identity attached to conversation listings.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LastMessage struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
	SenderID  string    `json:"senderId"`
}

// ConversationSummary is the inbox view: one entry per counterpart the user
// has exchanged messages with, carrying the most recent message.
type ConversationSummary struct {
	OtherUserID string      `json:"otherUserId"`
	User        UserSummary `json:"user"`
	LastMessage LastMessage `json:"lastMessage"`
}
