package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"competition-service/internal/domain"
	"competition-service/internal/draw"
	"competition-service/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompetitionRepository loads competition settings (from cache/backing store).
type CompetitionRepository interface {
	GetCompetition(ctx context.Context, competitionID string) (domain.Competition, error)
}

// SubmissionRepository lists the submissions entered into a competition.
type SubmissionRepository interface {
	ListSubmissions(ctx context.Context, competitionID string) ([]domain.Submission, error)
}

// ResultStore persists draw results. SaveIfAbsent must return
// domain.ErrDrawAlreadyExists when a result for the competition is already stored.
type ResultStore interface {
	GetResult(ctx context.Context, competitionID string) (domain.DrawResult, error)
	SaveIfAbsent(ctx context.Context, result domain.DrawResult) error
}

// Drawer selects winners from a weighted pool.
type Drawer interface {
	SelectMultipleWinners(candidates []domain.Candidate, count int) ([]domain.Winner, error)
}

// DrawSettings are the service-wide defaults for competitions that leave them unset.
type DrawSettings struct {
	EarlyBonus     domain.EarlyBonusConfig
	DefaultWinners int
}

// DrawService runs, stores and verifies competition draws.
type DrawService struct {
	competitions CompetitionRepository
	submissions  SubmissionRepository
	results      ResultStore
	feeds        FeedRepository
	drawer       Drawer
	settings     DrawSettings
	now          func() time.Time
	log          *zap.Logger
}

func NewDrawService(competitions CompetitionRepository, submissions SubmissionRepository, results ResultStore, feeds FeedRepository, settings DrawSettings, log *zap.Logger) *DrawService {
	return &DrawService{
		competitions: competitions,
		submissions:  submissions,
		results:      results,
		feeds:        feeds,
		drawer:       draw.NewEngine(),
		settings:     settings,
		now:          time.Now,
		log:          log,
	}
}

// WithClock is test-only for deterministic draw timestamps.
func (s *DrawService) WithClock(now func() time.Time) *DrawService {
	s.now = now
	return s
}

// WithDrawer swaps the winner selection engine.
func (s *DrawService) WithDrawer(d Drawer) *DrawService {
	s.drawer = d
	return s
}

// RunDraw draws up to winnerCount winners for a competition and stores the
// result. A competition is drawn at most once; later calls return
// domain.ErrDrawAlreadyExists. winnerCount <= 0 uses the competition's own
// winner count, then the service default, then 1.
func (s *DrawService) RunDraw(ctx context.Context, competitionID string, winnerCount int) (domain.DrawResult, error) {
	started := time.Now()
	log := s.log.With(zap.String("competitionId", competitionID))

	result, err := s.runDraw(ctx, competitionID, winnerCount)
	switch {
	case err == nil:
		metrics.DrawsTotal.WithLabelValues(metrics.OutcomeDrawn).Inc()
		metrics.DrawCandidates.Observe(float64(result.TotalCandidates))
		metrics.DrawWinners.Observe(float64(len(result.Winners)))
		metrics.DrawDuration.Observe(time.Since(started).Seconds())
		log.Info("draw completed",
			zap.String("drawId", result.ID),
			zap.Int("candidates", result.TotalCandidates),
			zap.Int("requested", result.RequestedWinners),
			zap.Int("winners", len(result.Winners)),
			zap.String("hash", result.Hash),
		)
		if short := result.Shortfall(); short > 0 {
			log.Warn("fewer eligible candidates than prizes", zap.Int("unawarded", short))
		}
	case errors.Is(err, domain.ErrDrawAlreadyExists):
		metrics.DrawsTotal.WithLabelValues(metrics.OutcomeAlreadyDrawn).Inc()
		log.Info("draw refused, competition already drawn")
	case errors.Is(err, domain.ErrNoEligibleCandidates):
		metrics.DrawsTotal.WithLabelValues(metrics.OutcomeNoCandidates).Inc()
		log.Info("draw refused, no eligible candidates")
	default:
		metrics.DrawsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("draw failed", zap.Error(err))
	}
	return result, err
}

func (s *DrawService) runDraw(ctx context.Context, competitionID string, winnerCount int) (domain.DrawResult, error) {
	if _, err := s.results.GetResult(ctx, competitionID); err == nil {
		return domain.DrawResult{}, domain.ErrDrawAlreadyExists
	} else if !errors.Is(err, domain.ErrDrawNotFound) {
		return domain.DrawResult{}, fmt.Errorf("check existing draw: %w", err)
	}

	competition, err := s.competitions.GetCompetition(ctx, competitionID)
	if err != nil {
		return domain.DrawResult{}, err
	}
	submissions, err := s.submissions.ListSubmissions(ctx, competitionID)
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("list submissions: %w", err)
	}

	candidates, err := BuildCandidates(competition, submissions, s.settings.EarlyBonus)
	if err != nil {
		return domain.DrawResult{}, err
	}
	if len(candidates) == 0 {
		return domain.DrawResult{}, fmt.Errorf("competition %s: %w", competitionID, domain.ErrNoEligibleCandidates)
	}

	count := s.winnerCount(competition, winnerCount)
	winners, err := s.drawer.SelectMultipleWinners(candidates, count)
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("select winners: %w", err)
	}

	drawnAt := s.now().UTC().Truncate(time.Microsecond)
	hash, err := draw.GenerateDrawHash(competitionID, winners, HashTimestamp(drawnAt))
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("hash draw: %w", err)
	}
	result := domain.DrawResult{
		ID:               uuid.NewString(),
		CompetitionID:    competitionID,
		RequestedWinners: count,
		TotalCandidates:  len(candidates),
		Winners:          winners,
		DrawnAt:          drawnAt,
		Hash:             hash,
	}
	if err := s.results.SaveIfAbsent(ctx, result); err != nil {
		if errors.Is(err, domain.ErrDrawAlreadyExists) {
			return domain.DrawResult{}, err
		}
		return domain.DrawResult{}, fmt.Errorf("save draw: %w", err)
	}

	if err := s.feeds.Announce(ctx, result); err != nil {
		// the result is stored; subscribers can still fetch it
		s.log.Warn("announce draw", zap.String("competitionId", competitionID), zap.Error(err))
	}
	return result, nil
}

func (s *DrawService) winnerCount(competition domain.Competition, requested int) int {
	for _, n := range []int{requested, competition.WinnerCount, s.settings.DefaultWinners} {
		if n > 0 {
			return n
		}
	}
	return 1
}

// GetDraw returns the stored result for a competition.
func (s *DrawService) GetDraw(ctx context.Context, competitionID string) (domain.DrawResult, error) {
	return s.results.GetResult(ctx, competitionID)
}

// VerifyDraw recomputes the hash of the stored result and compares it with
// the stored hash. This detects edits to winners or hash alone, not a
// coordinated rewrite of both.
func (s *DrawService) VerifyDraw(ctx context.Context, competitionID string) (domain.Verification, error) {
	result, err := s.results.GetResult(ctx, competitionID)
	if err != nil {
		return domain.Verification{}, err
	}
	computed, err := draw.GenerateDrawHash(result.CompetitionID, result.Winners, HashTimestamp(result.DrawnAt))
	if err != nil {
		// unhashable stored data cannot match any hash
		s.log.Warn("stored draw cannot be hashed", zap.String("competitionId", competitionID), zap.Error(err))
	}
	v := domain.Verification{
		CompetitionID: competitionID,
		Valid:         draw.VerifyDrawHash(result.CompetitionID, result.Winners, HashTimestamp(result.DrawnAt), result.Hash),
		StoredHash:    result.Hash,
		ComputedHash:  computed,
	}
	if v.Valid {
		metrics.VerificationsTotal.WithLabelValues("valid").Inc()
	} else {
		metrics.VerificationsTotal.WithLabelValues("mismatch").Inc()
		s.log.Warn("draw hash mismatch",
			zap.String("competitionId", competitionID),
			zap.String("stored", result.Hash),
			zap.String("computed", computed),
		)
	}
	return v, nil
}

// Subscribe returns a channel that receives results drawn for a competition
// from now on. The caller must invoke the returned cancel function to avoid leaks.
func (s *DrawService) Subscribe(_ context.Context, competitionID string) (<-chan domain.DrawResult, func()) {
	return s.feeds.Subscribe(competitionID)
}

// HashTimestamp is the canonical timestamp string hashed with a draw.
func HashTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
