package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helpmesh/helpmesh/internal/auth"
	"github.com/helpmesh/helpmesh/internal/chat"
	"github.com/helpmesh/helpmesh/internal/middleware"
	"github.com/helpmesh/helpmesh/internal/transport"
)

// ChatHandler exposes the REST side of messaging: history, summaries and
// deletes. Live traffic goes over the websocket instead.
type ChatHandler struct {
	svc      *chat.Service
	delivery *chat.Delivery
	users    *auth.Service
}

func NewChatHandler(svc *chat.Service, delivery *chat.Delivery, users *auth.Service) *ChatHandler {
	return &ChatHandler{svc: svc, delivery: delivery, users: users}
}

// GetConversation returns the page of messages with the counterpart and marks
// the incoming side read, mirroring what opening a conversation does over the
// websocket.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	otherID := chi.URLParam(r, "otherUserId")

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.ParseInt(raw, 10, 64)
	}

	msgs, err := h.svc.GetConversation(r.Context(), userID, otherID, limit)
	if err != nil {
		transport.DomainError(w, err)
		return
	}

	if err := h.svc.MarkMessagesAsRead(r.Context(), userID, otherID); err != nil {
		transport.DomainError(w, err)
		return
	}

	transport.WriteData(w, http.StatusOK, map[string]interface{}{
		"otherUserId":   otherID,
		"messages":      msgs,
		"totalMessages": len(msgs),
	})
}

// ListConversations returns the caller's inbox: one summary per counterpart,
// most recently active first.
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.GetUserConversations(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, summaries)
}

func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.GetUnreadCount(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, map[string]int64{"unreadCount": n})
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	senderID := chi.URLParam(r, "senderId")

	if err := h.svc.MarkMessagesAsRead(r.Context(), userID, senderID); err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, map[string]string{"message": "messages marked as read"})
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// SendMessage persists a message and pushes it to the receiver's live session
// when one exists, same as the websocket send_message event.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decode(w, r, &req) {
		return
	}

	msg, status, err := h.delivery.Send(r.Context(), middleware.UserID(r.Context()), req.ReceiverID, req.Content)
	if err != nil {
		transport.DomainError(w, err)
		return
	}

	transport.WriteData(w, http.StatusCreated, map[string]interface{}{
		"message": msg,
		"status":  status,
	})
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	messageID := chi.URLParam(r, "messageId")

	if err := h.svc.DeleteMessage(r.Context(), messageID, userID); err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, map[string]string{"message": "message deleted"})
}

func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	otherID := chi.URLParam(r, "otherUserId")

	n, err := h.svc.DeleteConversation(r.Context(), userID, otherID)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, map[string]int64{"deletedCount": n})
}

// ListVolunteers is the chat directory: volunteer accounts the caller can
// start a conversation with, excluding the caller.
func (h *ChatHandler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.ParseInt(raw, 10, 64)
	}

	users, err := h.users.SearchVolunteers(r.Context(),
		r.URL.Query().Get("search"),
		middleware.UserID(r.Context()),
		limit,
	)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, users)
}

func (h *ChatHandler) GetVolunteerProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetVolunteer(r.Context(), chi.URLParam(r, "volunteerId"))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, user)
}
