package app_test

import (
	"errors"
	"testing"
	"time"

	"competition-service/internal/app"
	"competition-service/internal/domain"
)

func TestBuildCandidatesFiltersAndWeighsTickets(t *testing.T) {
	competition := domain.Competition{
		ID:                "spring-quiz",
		WeightMode:        domain.WeightTickets,
		MinCorrectAnswers: 3,
		MinTickets:        1,
	}
	subs := []domain.Submission{
		{ID: "s1", CompetitionID: "spring-quiz", ParticipantName: "Ana", CorrectAnswers: 5, Tickets: 4},
		{ID: "s2", CompetitionID: "spring-quiz", ParticipantName: "Ben", CorrectAnswers: 2, Tickets: 9},
		{ID: "s3", CompetitionID: "spring-quiz", ParticipantName: "Cai", CorrectAnswers: 3, Tickets: 0},
		{ID: "s4", CompetitionID: "other", ParticipantName: "Dee", CorrectAnswers: 9, Tickets: 9},
		{ID: "s5", CompetitionID: "spring-quiz", ParticipantName: "Eve", CorrectAnswers: 3, Tickets: 1},
	}

	got, err := app.BuildCandidates(competition, subs, domain.EarlyBonusConfig{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(got) != 2 || got[0].SubmissionID != "s1" || got[1].SubmissionID != "s5" {
		t.Fatalf("unexpected candidates %+v", got)
	}
	if got[0].Weight != 4 || got[1].Weight != 1 {
		t.Fatalf("expected ticket weights 4 and 1, got %v and %v", got[0].Weight, got[1].Weight)
	}
}

func TestBuildCandidatesEarlyBonusUsesCompetitionWindow(t *testing.T) {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * 24 * time.Hour)
	competition := domain.Competition{
		ID:         "sprint",
		StartsAt:   start,
		EndsAt:     end,
		WeightMode: domain.WeightTicketsWithBonus,
		EarlyBonus: domain.EarlyBonusConfig{MaxMultiplier: 2, DecayFunction: domain.DecayLinear},
	}
	subs := []domain.Submission{
		{ID: "first", ParticipantName: "Ana", Tickets: 2, SubmittedAt: start},
		{ID: "middle", ParticipantName: "Ben", Tickets: 2, SubmittedAt: start.Add(5 * 24 * time.Hour)},
		{ID: "last", ParticipantName: "Cai", Tickets: 2, SubmittedAt: end},
	}

	got, err := app.BuildCandidates(competition, subs, domain.EarlyBonusConfig{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []float64{4, 3, 2}
	for i, c := range got {
		if c.Weight != want[i] {
			t.Fatalf("candidate %s: expected weight %v, got %v", c.SubmissionID, want[i], c.Weight)
		}
	}
}

func TestBuildCandidatesFallbackBonus(t *testing.T) {
	end := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	competition := domain.Competition{ID: "c", EndsAt: end, WeightMode: domain.WeightEarlyBonus}
	fallback := domain.EarlyBonusConfig{MaxMultiplier: 3, DecayFunction: domain.DecayLinear}

	got, err := app.BuildCandidates(competition, []domain.Submission{
		{ID: "early", SubmittedAt: end.Add(-60 * 24 * time.Hour)},
	}, fallback)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(got) != 1 || got[0].Weight != 3 {
		t.Fatalf("expected fallback max multiplier 3, got %+v", got)
	}
}

func TestBuildCandidatesUnknownWeightMode(t *testing.T) {
	_, err := app.BuildCandidates(domain.Competition{ID: "c", WeightMode: "coin_flip"}, nil, domain.EarlyBonusConfig{})
	if !errors.Is(err, domain.ErrUnknownWeightMode) {
		t.Fatalf("expected unknown weight mode, got %v", err)
	}
}
