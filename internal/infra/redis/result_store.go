package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"competition-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultStore keeps one draw result per competition under a SETNX-guarded key,
// so concurrent draws for the same competition cannot both be stored.
// Stored as: SET competition:{competitionID}:draw {json} NX
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) GetResult(ctx context.Context, competitionID string) (domain.DrawResult, error) {
	raw, err := s.client.Get(ctx, s.key(competitionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DrawResult{}, domain.ErrDrawNotFound
	}
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("get draw result: %w", err)
	}
	var result domain.DrawResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.DrawResult{}, fmt.Errorf("unmarshal draw result: %w", err)
	}
	return result, nil
}

func (s *ResultStore) SaveIfAbsent(ctx context.Context, result domain.DrawResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal draw result: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(result.CompetitionID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("store draw result: %w", err)
	}
	if !ok {
		return domain.ErrDrawAlreadyExists
	}
	return nil
}

func (s *ResultStore) key(competitionID string) string {
	return "competition:" + competitionID + ":draw"
}
