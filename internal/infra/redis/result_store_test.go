package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"competition-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestResultStoreSetNX(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewResultStore(newClient(mr))

	if _, err := store.GetResult(ctx, "spring-quiz"); !errors.Is(err, domain.ErrDrawNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	result := domain.DrawResult{
		ID:               "d1",
		CompetitionID:    "spring-quiz",
		RequestedWinners: 2,
		TotalCandidates:  3,
		Winners: []domain.Winner{
			{SubmissionID: "s1", ParticipantName: "Ana", Position: 1, Weight: 3, Probability: 100.0 / 3, TotalCandidates: 3},
		},
		DrawnAt: time.Date(2025, time.May, 2, 10, 0, 0, 123456000, time.UTC),
		Hash:    "abc",
	}
	if err := store.SaveIfAbsent(ctx, result); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("competition:spring-quiz:draw") {
		t.Fatalf("expected draw key to be set")
	}
	if err := store.SaveIfAbsent(ctx, domain.DrawResult{ID: "d2", CompetitionID: "spring-quiz"}); !errors.Is(err, domain.ErrDrawAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	got, err := store.GetResult(ctx, "spring-quiz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "d1" || !got.DrawnAt.Equal(result.DrawnAt) || got.Winners[0].Probability != result.Winners[0].Probability {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
