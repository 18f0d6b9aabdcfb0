package app

import (
	"context"
	"sync"

	"competition-service/internal/domain"
)

// FeedRepository abstracts where announcement feeds live (in-memory, Redis-backed, etc).
// Announce delivers a result to the competition's feed wherever its subscribers are.
type FeedRepository interface {
	Subscribe(competitionID string) (<-chan domain.DrawResult, func())
	Announce(ctx context.Context, result domain.DrawResult) error
}

// FeedSet holds the local feeds of one process, keyed by competition.
// Feeds exist only while they have subscribers.
type FeedSet struct {
	mu    sync.Mutex
	feeds map[string]*feed
}

func NewFeedSet() *FeedSet {
	return &FeedSet{feeds: make(map[string]*feed)}
}

// Subscribe registers a listener for competitionID. Lookup and registration
// happen under the set lock, so a concurrent cancel cannot drop the feed in
// between. The returned cancel func must be called to release the channel.
func (s *FeedSet) Subscribe(competitionID string) (<-chan domain.DrawResult, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feeds[competitionID]
	if !ok {
		f = newFeed()
		s.feeds[competitionID] = f
	}
	ch, unsubscribe := f.subscribe()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			unsubscribe()
			if f.isEmpty() && s.feeds[competitionID] == f {
				delete(s.feeds, competitionID)
			}
		})
	}
	return ch, cancel
}

// Publish hands result to the local subscribers of its competition, if any.
func (s *FeedSet) Publish(result domain.DrawResult) {
	s.mu.Lock()
	f, ok := s.feeds[result.CompetitionID]
	s.mu.Unlock()
	if ok {
		f.publish(result)
	}
}

// Len reports how many competitions currently have subscribers.
func (s *FeedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

// feed fans draw results for one competition out to live subscribers.
type feed struct {
	mu          sync.Mutex
	subscribers map[chan domain.DrawResult]struct{}
}

func newFeed() *feed {
	return &feed{subscribers: make(map[chan domain.DrawResult]struct{})}
}

func (f *feed) isEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) == 0
}

func (f *feed) subscribe() (<-chan domain.DrawResult, func()) {
	ch := make(chan domain.DrawResult, 4)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// publish delivers result to every subscriber without blocking; a slow
// subscriber loses its oldest pending announcement.
func (f *feed) publish(result domain.DrawResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- result:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}
