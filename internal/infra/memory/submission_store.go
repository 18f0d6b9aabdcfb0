package memory

import (
	"context"
	"sync"

	"competition-service/internal/domain"
)

// SubmissionStore keeps submissions grouped by competition.
type SubmissionStore struct {
	mu          sync.RWMutex
	submissions map[string][]domain.Submission
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		submissions: make(map[string][]domain.Submission),
	}
}

// Add appends submissions to their competitions.
func (s *SubmissionStore) Add(subs ...domain.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range subs {
		s.submissions[sub.CompetitionID] = append(s.submissions[sub.CompetitionID], sub)
	}
}

func (s *SubmissionStore) ListSubmissions(_ context.Context, competitionID string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := s.submissions[competitionID]
	out := make([]domain.Submission, len(subs))
	copy(out, subs)
	return out, nil
}
