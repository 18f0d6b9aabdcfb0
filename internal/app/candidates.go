package app

import (
	"fmt"

	"competition-service/internal/domain"
	"competition-service/internal/draw"
)

// BuildCandidates turns the eligible submissions of a competition into a
// weighted draw pool. fallbackBonus applies when the competition carries no
// bonus settings of its own. Submissions that end up with no weight are dropped.
func BuildCandidates(competition domain.Competition, submissions []domain.Submission, fallbackBonus domain.EarlyBonusConfig) ([]domain.Candidate, error) {
	mode, err := domain.ParseWeightMode(string(competition.WeightMode))
	if err != nil {
		return nil, fmt.Errorf("competition %s: %w", competition.ID, err)
	}
	bonus := bonusConfigFor(competition, fallbackBonus)

	candidates := make([]domain.Candidate, 0, len(submissions))
	for _, sub := range submissions {
		if sub.CompetitionID != "" && sub.CompetitionID != competition.ID {
			continue
		}
		if sub.CorrectAnswers < competition.MinCorrectAnswers || sub.Tickets < competition.MinTickets {
			continue
		}

		var weight float64
		switch mode {
		case domain.WeightTickets:
			weight = float64(sub.Tickets)
		case domain.WeightEarlyBonus:
			weight = earlyBonus(sub, competition, bonus)
		case domain.WeightTicketsWithBonus:
			weight = float64(sub.Tickets) * earlyBonus(sub, competition, bonus)
		}
		if weight <= 0 {
			continue
		}

		candidates = append(candidates, domain.Candidate{
			SubmissionID:    sub.ID,
			ParticipantName: sub.ParticipantName,
			Weight:          weight,
			SubmittedAt:     sub.SubmittedAt,
		})
	}
	return candidates, nil
}

func bonusConfigFor(competition domain.Competition, fallback domain.EarlyBonusConfig) domain.EarlyBonusConfig {
	bonus := competition.EarlyBonus
	if bonus.MaxMultiplier <= 0 {
		bonus = fallback
	}
	if bonus.Window <= 0 && !competition.StartsAt.IsZero() && competition.EndsAt.After(competition.StartsAt) {
		bonus.Window = competition.EndsAt.Sub(competition.StartsAt)
	}
	return bonus
}

func earlyBonus(sub domain.Submission, competition domain.Competition, bonus domain.EarlyBonusConfig) float64 {
	if competition.EndsAt.IsZero() {
		// no end date means no window to measure against
		return 1
	}
	return draw.CalculateEarlyBonus(sub.SubmittedAt, competition.EndsAt, bonus)
}
