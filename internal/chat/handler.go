package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/observability"
	"github.com/helpmesh/helpmesh/internal/security"
)

// Handler owns the websocket endpoint. Per-connection lifecycle:
// Connecting (handshake + token check) -> Authenticated (registered, events
// dispatched) -> Closed (transport close or replacement). Application-level
// errors emit an error event but never tear the session down.
type Handler struct {
	registry *Registry
	delivery *Delivery
	service  *Service
	secret   string
}

func NewHandler(registry *Registry, delivery *Delivery, service *Service, secret string) *Handler {
	return &Handler{
		registry: registry,
		delivery: delivery,
		service:  service,
		secret:   secret,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := handshakeToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := security.VerifyToken(token, h.secret)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.Logger().Error("ws: upgrade error", zap.Error(err))
		return
	}

	s := NewSession(uuid.NewString(), claims.UserID, conn)
	h.registry.Register(s)
	s.Start()

	observability.Logger().Info("ws: connected", zap.String("user_id", s.UserID), zap.String("sid", s.ID))
	observability.WebSocketConnectionsActive.WithLabelValues("chat").Inc()

	s.Emit(EventConnectionSuccess, ConnectionSuccessPayload{
		Message: "Connected to chat server",
		UserID:  claims.UserID,
	})

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.readLoop(s)
}

// handshakeToken pulls the bearer credential from the upgrade request: the
// token query parameter or the Authorization header.
func handshakeToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	token, _ := security.BearerFromHeader(r.Header.Get("Authorization"))
	return token
}

func (h *Handler) readLoop(s *Session) {
	defer func() {
		h.registry.Unregister(s)
		s.Close()
		observability.Logger().Info("ws: disconnected", zap.String("user_id", s.UserID), zap.String("sid", s.ID))
		observability.WebSocketConnectionsActive.WithLabelValues("chat").Dec()
	}()

	for {
		_, raw, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				observability.Logger().Error("ws: read loop error",
					zap.String("user_id", s.UserID), zap.Error(err))
			}
			return
		}
		h.dispatch(context.Background(), s, raw)
	}
}

func (h *Handler) dispatch(ctx context.Context, s *Session, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.Emit(EventError, ErrorPayload{Message: "invalid event payload"})
		return
	}

	switch env.Event {
	case EventSendMessage:
		h.handleSendMessage(ctx, s, env.Data)
	case EventGetConversation:
		h.handleGetConversation(ctx, s, env.Data)
	case EventTyping:
		h.handleTyping(s, env.Data)
	default:
		s.Emit(EventError, ErrorPayload{Message: "unknown event: " + env.Event})
	}
}

func (h *Handler) handleSendMessage(ctx context.Context, s *Session, data json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.Emit(EventError, ErrorPayload{Message: "invalid send_message payload"})
		return
	}

	if p.Content == "" || p.ReceiverID == "" {
		s.Emit(EventError, ErrorPayload{Message: "content and receiverId are required"})
		return
	}

	msg, status, err := h.delivery.Send(ctx, s.UserID, p.ReceiverID, p.Content)
	if err != nil {
		s.Emit(EventError, ErrorPayload{Message: "failed to send message: " + err.Error()})
		return
	}

	s.Emit(EventMessageSent, MessageSentPayload{
		ID:         msg.ID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		Timestamp:  msg.Timestamp,
		Status:     status,
	})
}

func (h *Handler) handleGetConversation(ctx context.Context, s *Session, data json.RawMessage) {
	var p GetConversationPayload
	if err := json.Unmarshal(data, &p); err != nil || p.OtherUserID == "" {
		s.Emit(EventError, ErrorPayload{Message: "invalid get_conversation payload"})
		return
	}

	msgs, err := h.service.GetConversation(ctx, s.UserID, p.OtherUserID, p.Limit)
	if err != nil {
		s.Emit(EventError, ErrorPayload{Message: "failed to load conversation: " + err.Error()})
		return
	}

	if err := h.service.MarkMessagesAsRead(ctx, s.UserID, p.OtherUserID); err != nil {
		observability.Logger().Error("ws: mark read failed",
			zap.String("user_id", s.UserID), zap.Error(err))
	}

	if msgs == nil {
		msgs = []*domain.Message{}
	}

	s.Emit(EventConversationData, ConversationDataPayload{
		OtherUserID:   p.OtherUserID,
		Messages:      msgs,
		TotalMessages: len(msgs),
	})
}

func (h *Handler) handleTyping(s *Session, data json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ReceiverID == "" {
		return
	}
	h.delivery.RelayTyping(s.UserID, p.ReceiverID, p.IsTyping)
}
