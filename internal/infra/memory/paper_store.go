package memory

import (
	"context"
	"sync"

	"quiz-review-service/internal/domain"
)

// PaperStore is an in-memory implementation of app.PaperStore (useful for tests/demos).
type PaperStore struct {
	mu     sync.RWMutex
	papers map[string]domain.StoredPaper
}

func NewPaperStore() *PaperStore {
	return &PaperStore{papers: make(map[string]domain.StoredPaper)}
}

func (s *PaperStore) SavePaper(_ context.Context, paper domain.StoredPaper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers[paper.ID] = paper
	return nil
}

func (s *PaperStore) LoadPaper(_ context.Context, id string) (domain.StoredPaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if paper, ok := s.papers[id]; ok {
		return paper, nil
	}
	return domain.StoredPaper{}, domain.ErrPaperNotFound
}
