package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"competition-service/internal/domain"
	"github.com/uptrace/bun"
)

type drawResultRow struct {
	bun.BaseModel `bun:"table:draw_results"`

	ID               string          `bun:"id,pk"`
	CompetitionID    string          `bun:"competition_id"`
	RequestedWinners int             `bun:"requested_winners"`
	TotalCandidates  int             `bun:"total_candidates"`
	Winners          []domain.Winner `bun:"winners,type:jsonb"`
	DrawnAt          time.Time       `bun:"drawn_at"`
	Hash             string          `bun:"hash"`
}

// ResultStore persists draw results with bun. The unique constraint on
// competition_id enforces one draw per competition.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) GetResult(ctx context.Context, competitionID string) (domain.DrawResult, error) {
	var row drawResultRow
	err := s.db.NewSelect().
		Model(&row).
		Where("competition_id = ?", competitionID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DrawResult{}, domain.ErrDrawNotFound
	}
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("select draw result: %w", err)
	}
	return domain.DrawResult{
		ID:               row.ID,
		CompetitionID:    row.CompetitionID,
		RequestedWinners: row.RequestedWinners,
		TotalCandidates:  row.TotalCandidates,
		Winners:          row.Winners,
		DrawnAt:          row.DrawnAt.UTC(),
		Hash:             row.Hash,
	}, nil
}

func (s *ResultStore) SaveIfAbsent(ctx context.Context, result domain.DrawResult) error {
	row := &drawResultRow{
		ID:               result.ID,
		CompetitionID:    result.CompetitionID,
		RequestedWinners: result.RequestedWinners,
		TotalCandidates:  result.TotalCandidates,
		Winners:          result.Winners,
		DrawnAt:          result.DrawnAt,
		Hash:             result.Hash,
	}
	res, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (competition_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert draw result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert draw result: %w", err)
	}
	if n == 0 {
		return domain.ErrDrawAlreadyExists
	}
	return nil
}
