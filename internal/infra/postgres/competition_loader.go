package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"competition-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CompetitionLoader loads competition settings from Postgres.
type CompetitionLoader struct {
	pool *pgxpool.Pool
}

func NewCompetitionLoader(pool *pgxpool.Pool) *CompetitionLoader {
	return &CompetitionLoader{pool: pool}
}

const selectCompetition = `
SELECT id, title, starts_at, ends_at, weight_mode, min_correct_answers, min_tickets,
       winner_count, bonus_max_multiplier, bonus_decay, bonus_window_seconds
FROM competitions WHERE id=$1`

func (l *CompetitionLoader) LoadCompetition(ctx context.Context, competitionID string) (domain.Competition, error) {
	var (
		c             domain.Competition
		startsAt      *time.Time
		endsAt        *time.Time
		weightMode    string
		decay         string
		windowSeconds int64
	)
	err := l.pool.QueryRow(ctx, selectCompetition, competitionID).Scan(
		&c.ID, &c.Title, &startsAt, &endsAt, &weightMode, &c.MinCorrectAnswers, &c.MinTickets,
		&c.WinnerCount, &c.EarlyBonus.MaxMultiplier, &decay, &windowSeconds,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Competition{}, domain.ErrCompetitionNotFound
	}
	if err != nil {
		return domain.Competition{}, fmt.Errorf("load competition: %w", err)
	}

	if startsAt != nil {
		c.StartsAt = startsAt.UTC()
	}
	if endsAt != nil {
		c.EndsAt = endsAt.UTC()
	}
	if c.WeightMode, err = domain.ParseWeightMode(weightMode); err != nil {
		return domain.Competition{}, fmt.Errorf("load competition %s: %w", competitionID, err)
	}
	if c.EarlyBonus.DecayFunction, err = domain.ParseDecayFunction(decay); err != nil {
		return domain.Competition{}, fmt.Errorf("load competition %s: %w", competitionID, err)
	}
	c.EarlyBonus.Window = time.Duration(windowSeconds) * time.Second
	return c, nil
}
