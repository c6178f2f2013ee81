package chat

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/helpmesh/helpmesh/internal/domain"
)

// fakeStore is an in-memory MessageStore for exercising the delivery and
// query engines without a database.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	msgs   []*domain.Message
	users  map[string]domain.UserSummary

	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, users: make(map[string]domain.UserSummary)}
}

func (f *fakeStore) addUser(id, username string) {
	f.users[id] = domain.UserSummary{ID: id, Username: username, Email: username + "@example.com"}
}

func (f *fakeStore) Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return nil, f.insertErr
	}

	saved := *msg
	saved.ID = "msg-" + strconv.Itoa(f.nextID)
	f.nextID++
	f.msgs = append(f.msgs, &saved)
	return &saved, nil
}

func between(m *domain.Message, a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func (f *fakeStore) Conversation(ctx context.Context, userID, otherID string, limit int64) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Message
	for _, m := range f.msgs {
		if between(m, userID, otherID) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, m := range f.msgs {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UnreadCount(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, m := range f.msgs {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Summaries(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sorted := make([]*domain.Message, len(f.msgs))
	copy(sorted, f.msgs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })

	seen := make(map[string]bool)
	var out []*domain.ConversationSummary
	for _, m := range sorted {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		if seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, &domain.ConversationSummary{
			OtherUserID: other,
			User:        f.users[other],
			LastMessage: domain.LastMessage{
				Content:   m.Content,
				Timestamp: m.Timestamp,
				IsRead:    m.IsRead,
				SenderID:  m.SenderID,
			},
		})
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.msgs {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, m := range f.msgs {
		if m.ID == id {
			f.msgs = append(f.msgs[:i], f.msgs[i+1:]...)
			return nil
		}
	}
	return domain.ErrMessageNotFound
}

func (f *fakeStore) DeleteConversation(ctx context.Context, userID, otherID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var kept []*domain.Message
	var n int64
	for _, m := range f.msgs {
		if between(m, userID, otherID) {
			n++
			continue
		}
		kept = append(kept, m)
	}
	f.msgs = kept
	return n, nil
}
