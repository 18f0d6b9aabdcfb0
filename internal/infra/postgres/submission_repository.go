package postgres

import (
	"context"
	"fmt"

	"competition-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SubmissionRepository lists competition submissions from Postgres.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// ListSubmissions returns submissions in submission order so draw pools are
// built in a stable order.
func (r *SubmissionRepository) ListSubmissions(ctx context.Context, competitionID string) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, competition_id, participant_name, correct_answers, tickets, submitted_at
FROM submissions WHERE competition_id=$1
ORDER BY submitted_at, id`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.ID, &s.CompetitionID, &s.ParticipantName, &s.CorrectAnswers, &s.Tickets, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		s.SubmittedAt = s.SubmittedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}
