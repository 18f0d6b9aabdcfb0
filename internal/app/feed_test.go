package app_test

import (
	"sync"
	"testing"
	"time"

	"competition-service/internal/app"
	"competition-service/internal/domain"
)

func TestFeedSetKeepsFeedWhileOthersSubscribed(t *testing.T) {
	feeds := app.NewFeedSet()

	first, cancelFirst := feeds.Subscribe("c")
	second, cancelSecond := feeds.Subscribe("c")
	defer cancelSecond()

	cancelFirst()
	if _, open := <-first; open {
		t.Fatalf("expected first channel closed")
	}

	feeds.Publish(domain.DrawResult{CompetitionID: "c", Hash: "h1"})
	select {
	case got := <-second:
		if got.Hash != "h1" {
			t.Fatalf("unexpected result %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("remaining subscriber missed the announcement")
	}
}

func TestFeedSetConcurrentSubscribeAndCancel(t *testing.T) {
	feeds := app.NewFeedSet()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ch, cancel := feeds.Subscribe("c")
				// a registered subscriber must be reachable even while
				// other subscribers on the same competition are leaving
				feeds.Publish(domain.DrawResult{CompetitionID: "c"})
				select {
				case <-ch:
				case <-time.After(time.Second):
					t.Errorf("subscriber attached to a feed that announcements cannot reach")
					cancel()
					return
				}
				cancel()
			}
		}()
	}
	wg.Wait()

	if n := feeds.Len(); n != 0 {
		t.Fatalf("expected no feeds left, got %d", n)
	}
}

func TestFeedSetDropsOldestForSlowSubscriber(t *testing.T) {
	feeds := app.NewFeedSet()
	ch, cancel := feeds.Subscribe("c")
	defer cancel()

	for i := 0; i < 6; i++ {
		feeds.Publish(domain.DrawResult{CompetitionID: "c", RequestedWinners: i})
	}
	got := <-ch
	if got.RequestedWinners != 2 {
		t.Fatalf("expected oldest two announcements dropped, got %d first", got.RequestedWinners)
	}
}
