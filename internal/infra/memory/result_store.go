package memory

import (
	"context"
	"sync"

	"competition-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultStore.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.DrawResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]domain.DrawResult),
	}
}

func (s *ResultStore) GetResult(_ context.Context, competitionID string) (domain.DrawResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[competitionID]
	if !ok {
		return domain.DrawResult{}, domain.ErrDrawNotFound
	}
	return cloneResult(result), nil
}

func (s *ResultStore) SaveIfAbsent(_ context.Context, result domain.DrawResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.CompetitionID]; ok {
		return domain.ErrDrawAlreadyExists
	}
	s.results[result.CompetitionID] = cloneResult(result)
	return nil
}

// Replace overwrites a stored result unconditionally. It exists for admin
// tooling and tests that simulate tampering.
func (s *ResultStore) Replace(result domain.DrawResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.CompetitionID] = cloneResult(result)
}

func cloneResult(r domain.DrawResult) domain.DrawResult {
	r.Winners = append([]domain.Winner(nil), r.Winners...)
	return r
}
