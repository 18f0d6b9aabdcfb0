package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"competition-service/internal/app"
	"competition-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DrawChannel is the pub/sub channel draw announcements travel on.
const DrawChannel = "competition:draws"

// FeedStore is a Redis-aware implementation of app.FeedRepository.
// Feeds and their subscribers stay in a local app.FeedSet; only announcements
// cross instances, via PUBLISH on DrawChannel. Relay must be running for
// announcements to reach local subscribers, including those on the instance
// that ran the draw.
type FeedStore struct {
	*app.FeedSet
	client *redis.Client
	log    *zap.Logger
}

func NewFeedStore(client *redis.Client, log *zap.Logger) *FeedStore {
	return &FeedStore{
		FeedSet: app.NewFeedSet(),
		client:  client,
		log:     log,
	}
}

// Announce publishes result on DrawChannel for every instance's Relay.
func (s *FeedStore) Announce(ctx context.Context, result domain.DrawResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	return s.client.Publish(ctx, DrawChannel, data).Err()
}

// Relay subscribes to DrawChannel and forwards announcements to local feeds
// until ctx is done or stop is called. It returns once the subscription is live.
func (s *FeedStore) Relay(ctx context.Context) (stop func(), err error) {
	sub := s.client.Subscribe(ctx, DrawChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", DrawChannel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			var result domain.DrawResult
			if err := json.Unmarshal([]byte(msg.Payload), &result); err != nil {
				s.log.Warn("drop malformed announcement", zap.Error(err))
				continue
			}
			s.Publish(result)
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			_ = sub.Close()
			<-done
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return stop, nil
}
