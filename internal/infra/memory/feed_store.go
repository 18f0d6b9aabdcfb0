package memory

import (
	"context"

	"competition-service/internal/app"
	"competition-service/internal/domain"
)

// FeedStore is an in-memory implementation of app.FeedRepository.
type FeedStore struct {
	*app.FeedSet
}

func NewFeedStore() *FeedStore {
	return &FeedStore{FeedSet: app.NewFeedSet()}
}

// Announce publishes to the local feed, if anyone is subscribed.
func (s *FeedStore) Announce(_ context.Context, result domain.DrawResult) error {
	s.Publish(result)
	return nil
}
