package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"competition-service/internal/domain"
)

func TestCompetitionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CompetitionLoader: NewStaticCompetitionLoader(map[string]domain.Competition{
			"spring-quiz": sampleCompetition(),
		}),
	}
	repo := NewCompetitionRepository(loader, time.Minute)

	if _, err := repo.GetCompetition(context.Background(), "spring-quiz"); err != nil {
		t.Fatalf("get competition: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCompetition(context.Background(), "spring-quiz"); err != nil {
		t.Fatalf("get competition 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCompetitionRepositoryExpiresAndInvalidates(t *testing.T) {
	loader := &countingLoader{
		CompetitionLoader: NewStaticCompetitionLoader(map[string]domain.Competition{
			"spring-quiz": sampleCompetition(),
		}),
	}
	repo := NewCompetitionRepository(loader, time.Minute)
	now := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCompetition(context.Background(), "spring-quiz")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCompetition(context.Background(), "spring-quiz")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}

	repo.Invalidate("spring-quiz")
	_, _ = repo.GetCompetition(context.Background(), "spring-quiz")
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestCompetitionRepositoryNotFound(t *testing.T) {
	repo := NewCompetitionRepository(NewStaticCompetitionLoader(nil), time.Minute)
	_, err := repo.GetCompetition(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCompetitionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	CompetitionLoader
	calls int
}

func (l *countingLoader) LoadCompetition(ctx context.Context, competitionID string) (domain.Competition, error) {
	l.calls++
	return l.CompetitionLoader.LoadCompetition(ctx, competitionID)
}

func sampleCompetition() domain.Competition {
	return domain.Competition{
		ID:                "spring-quiz",
		Title:             "Spring Science Quiz",
		StartsAt:          time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:            time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		WeightMode:        domain.WeightTickets,
		MinCorrectAnswers: 3,
		WinnerCount:       2,
	}
}
