package help

import (
	"sync"

	"github.com/helpmesh/helpmesh/internal/domain"
)

// Service is the in-memory help board. Entries do not survive a restart;
// the board is announcement-style, not a durable record.
type Service struct {
	mu     sync.Mutex
	nextID int64
	helps  []*domain.HelpRequest
}

func NewService() *Service {
	return &Service{nextID: 1}
}

type Input struct {
	Title    string `json:"title"`
	Time     string `json:"time"`
	Category string `json:"category"`
}

type PatchInput struct {
	Title    *string `json:"title"`
	Time     *string `json:"time"`
	Category *string `json:"category"`
}

func (s *Service) List() []*domain.HelpRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.HelpRequest, len(s.helps))
	copy(out, s.helps)
	return out
}

// FindByCategory returns the first entry in the given category.
func (s *Service) FindByCategory(category string) (*domain.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.helps {
		if h.Category == category {
			return h, nil
		}
	}
	return nil, domain.ErrHelpNotFound
}

func (s *Service) Add(in Input) *domain.HelpRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &domain.HelpRequest{
		ID:       s.nextID,
		Title:    in.Title,
		Time:     in.Time,
		Category: in.Category,
	}
	s.nextID++
	s.helps = append(s.helps, h)
	return h
}

func (s *Service) Update(id int64, in Input) (*domain.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.helps {
		if h.ID == id {
			h.Title = in.Title
			h.Time = in.Time
			h.Category = in.Category
			return h, nil
		}
	}
	return nil, domain.ErrHelpNotFound
}

func (s *Service) Patch(id int64, in PatchInput) (*domain.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.helps {
		if h.ID == id {
			if in.Title != nil {
				h.Title = *in.Title
			}
			if in.Time != nil {
				h.Time = *in.Time
			}
			if in.Category != nil {
				h.Category = *in.Category
			}
			return h, nil
		}
	}
	return nil, domain.ErrHelpNotFound
}
