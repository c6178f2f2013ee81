package chat

import (
	"encoding/json"
	"time"

	"github.com/helpmesh/helpmesh/internal/domain"
)

// Inbound event names accepted while a session is authenticated.
const (
	EventSendMessage     = "send_message"
	EventGetConversation = "get_conversation"
	EventTyping          = "typing"
)

// Outbound event names.
const (
	EventConnectionSuccess = "connection_success"
	EventMessageSent       = "message_sent"
	EventReceiveMessage    = "receive_message"
	EventConversationData  = "conversation_data"
	EventUserTyping        = "user_typing"
	EventError             = "error"
)

// message_sent delivery status values.
const (
	StatusDelivered = "delivered"
	StatusSaved     = "saved"
)

// Envelope frames every message on the wire in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type GetConversationPayload struct {
	OtherUserID string `json:"otherUserId"`
	Limit       int64  `json:"limit,omitempty"`
}

type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type ConnectionSuccessPayload struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type MessageSentPayload struct {
	ID         string    `json:"_id"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
}

type ConversationDataPayload struct {
	OtherUserID   string            `json:"otherUserId"`
	Messages      []*domain.Message `json:"messages"`
	TotalMessages int               `json:"totalMessages"`
}

type UserTypingPayload struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func marshalEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
