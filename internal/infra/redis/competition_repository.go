package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"competition-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CompetitionLoader fetches competition settings from a backing store (e.g., Postgres).
type CompetitionLoader interface {
	LoadCompetition(ctx context.Context, competitionID string) (domain.Competition, error)
}

// CompetitionRepository caches competitions in Redis as JSON and falls back to a loader on cache miss.
// Stored as: SET competition:{competitionID} {json} EX ttl
type CompetitionRepository struct {
	client *redis.Client
	loader CompetitionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewCompetitionRepository(client *redis.Client, loader CompetitionLoader, ttl time.Duration) *CompetitionRepository {
	return &CompetitionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CompetitionRepository) GetCompetition(ctx context.Context, competitionID string) (domain.Competition, error) {
	if c, ok := r.fromCache(ctx, competitionID); ok {
		return c, nil
	}

	result, err, _ := r.sf.Do(competitionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if c, ok := r.fromCache(ctx, competitionID); ok {
			return c, nil
		}

		competition, err := r.loader.LoadCompetition(ctx, competitionID)
		if err != nil {
			return domain.Competition{}, err
		}

		if data, err := json.Marshal(competition); err == nil {
			_ = r.client.Set(ctx, r.key(competitionID), data, r.ttlWithJitter()).Err()
		}
		return competition, nil
	})
	if err != nil {
		return domain.Competition{}, err
	}
	return result.(domain.Competition), nil
}

// Invalidate drops a cached competition.
func (r *CompetitionRepository) Invalidate(ctx context.Context, competitionID string) error {
	return r.client.Del(ctx, r.key(competitionID)).Err()
}

func (r *CompetitionRepository) fromCache(ctx context.Context, competitionID string) (domain.Competition, bool) {
	raw, err := r.client.Get(ctx, r.key(competitionID)).Bytes()
	if err != nil {
		return domain.Competition{}, false
	}
	var competition domain.Competition
	if err := json.Unmarshal(raw, &competition); err != nil {
		return domain.Competition{}, false
	}
	return competition, true
}

func (r *CompetitionRepository) key(competitionID string) string {
	return "competition:" + competitionID
}

func (r *CompetitionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
