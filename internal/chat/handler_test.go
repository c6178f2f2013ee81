package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/security"
)

const handlerTestSecret = "handler-test-secret"

func newChatServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	registry := NewRegistry()
	delivery := NewDelivery(store, registry, time.Second)
	service := NewService(store, time.Second)

	srv := httptest.NewServer(NewHandler(registry, delivery, service, handlerTestSecret))
	t.Cleanup(srv.Close)
	return srv, store
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func userToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := security.GenerateToken(handlerTestSecret, "helpmesh",
		&domain.User{ID: userID, Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)
	return token
}

func readEvent(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	frame, err := marshalEvent(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	srv, _ := newChatServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	srv, _ := newChatServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token=not-a-token", nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeAcceptsQueryToken(t *testing.T) {
	srv, _ := newChatServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+userToken(t, "alice"), nil)
	require.NoError(t, err)
	defer conn.Close()

	env := readEvent(t, conn)
	assert.Equal(t, EventConnectionSuccess, env.Event)

	var p ConnectionSuccessPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "alice", p.UserID)
}

func TestHandshakeAcceptsAuthorizationHeader(t *testing.T) {
	srv, _ := newChatServer(t)

	header := http.Header{"Authorization": []string{"Bearer " + userToken(t, "alice")}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	defer conn.Close()

	env := readEvent(t, conn)
	assert.Equal(t, EventConnectionSuccess, env.Event)
}

// Application-level failures emit an error event and leave the session fully
// usable afterwards.
func TestApplicationErrorsKeepSessionAlive(t *testing.T) {
	srv, store := newChatServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+userToken(t, "alice"), nil)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn) // connection_success

	// Malformed frame.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	env := readEvent(t, conn)
	assert.Equal(t, EventError, env.Event)

	// Unknown event.
	sendEvent(t, conn, "subscribe", map[string]string{"channel": "news"})
	env = readEvent(t, conn)
	assert.Equal(t, EventError, env.Event)

	var errPayload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &errPayload))
	assert.Contains(t, errPayload.Message, "unknown event")

	// Self-message over send_message.
	sendEvent(t, conn, EventSendMessage, SendMessagePayload{ReceiverID: "alice", Content: "hi me"})
	env = readEvent(t, conn)
	assert.Equal(t, EventError, env.Event)

	// The same connection still handles a valid send.
	sendEvent(t, conn, EventSendMessage, SendMessagePayload{ReceiverID: "bob", Content: "hi bob"})
	env = readEvent(t, conn)
	require.Equal(t, EventMessageSent, env.Event)

	var sent MessageSentPayload
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, "bob", sent.ReceiverID)
	assert.Equal(t, StatusSaved, sent.Status)
	assert.NotEmpty(t, sent.ID)

	_, err = store.GetByID(context.Background(), sent.ID)
	assert.NoError(t, err)
}

func TestGetConversationOverSocket(t *testing.T) {
	srv, store := newChatServer(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed(t, store, "bob", "alice", "hello alice", base)
	seed(t, store, "alice", "bob", "hello bob", base.Add(time.Minute))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+userToken(t, "alice"), nil)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn) // connection_success

	sendEvent(t, conn, EventGetConversation, GetConversationPayload{OtherUserID: "bob"})
	env := readEvent(t, conn)
	require.Equal(t, EventConversationData, env.Event)

	var data ConversationDataPayload
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "bob", data.OtherUserID)
	require.Equal(t, 2, data.TotalMessages)
	assert.Equal(t, "hello alice", data.Messages[0].Content)
	assert.Equal(t, "hello bob", data.Messages[1].Content)

	// Opening the conversation marked bob's messages read.
	n, err := store.UnreadCount(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTypingRelayedBetweenLiveSessions(t *testing.T) {
	srv, _ := newChatServer(t)

	alice, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+userToken(t, "alice"), nil)
	require.NoError(t, err)
	defer alice.Close()
	readEvent(t, alice)

	bob, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+userToken(t, "bob"), nil)
	require.NoError(t, err)
	defer bob.Close()
	readEvent(t, bob)

	sendEvent(t, alice, EventTyping, TypingPayload{ReceiverID: "bob", IsTyping: true})

	env := readEvent(t, bob)
	require.Equal(t, EventUserTyping, env.Event)

	var p UserTypingPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "alice", p.SenderID)
	assert.True(t, p.IsTyping)
}
