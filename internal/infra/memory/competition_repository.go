package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"competition-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CompetitionLoader fetches competition settings from a backing store.
type CompetitionLoader interface {
	LoadCompetition(ctx context.Context, competitionID string) (domain.Competition, error)
}

// CompetitionRepository caches competitions with TTL to avoid repeated DB hits.
type CompetitionRepository struct {
	loader CompetitionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCompetition
}

type cachedCompetition struct {
	competition domain.Competition
	expiresAt   time.Time
}

func NewCompetitionRepository(loader CompetitionLoader, ttl time.Duration) *CompetitionRepository {
	return &CompetitionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCompetition),
	}
}

func (r *CompetitionRepository) GetCompetition(ctx context.Context, competitionID string) (domain.Competition, error) {
	if c, ok := r.cached(competitionID); ok {
		return c, nil
	}

	result, err, _ := r.sf.Do(competitionID, func() (interface{}, error) {
		if c, ok := r.cached(competitionID); ok {
			return c, nil
		}

		competition, err := r.loader.LoadCompetition(ctx, competitionID)
		if err != nil {
			return domain.Competition{}, err
		}

		r.mu.Lock()
		r.cache[competitionID] = cachedCompetition{
			competition: competition,
			expiresAt:   r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return competition, nil
	})
	if err != nil {
		return domain.Competition{}, err
	}
	return result.(domain.Competition), nil
}

// Invalidate drops a cached competition, e.g. after an admin edit.
func (r *CompetitionRepository) Invalidate(competitionID string) {
	r.mu.Lock()
	delete(r.cache, competitionID)
	r.mu.Unlock()
}

func (r *CompetitionRepository) cached(competitionID string) (domain.Competition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[competitionID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Competition{}, false
	}
	return entry.competition, true
}

func (r *CompetitionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCompetitionLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCompetitionLoader struct {
	competitions map[string]domain.Competition
}

func NewStaticCompetitionLoader(competitions map[string]domain.Competition) *StaticCompetitionLoader {
	return &StaticCompetitionLoader{competitions: competitions}
}

func (l *StaticCompetitionLoader) LoadCompetition(_ context.Context, competitionID string) (domain.Competition, error) {
	if c, ok := l.competitions[competitionID]; ok {
		return c, nil
	}
	return domain.Competition{}, domain.ErrCompetitionNotFound
}
