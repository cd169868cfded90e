package crawler

import (
	"context"
	"time"
)

// visitTracker records URLs already queued so pagination loops terminate.
type visitTracker interface {
	MarkIfNew(url string) bool
}

// normalizedVisitTracker keys URLs by their NormalizeURL form. It is owned
// by a single iterator and needs no locking.
type normalizedVisitTracker struct {
	seen map[string]struct{}
}

func newNormalizedVisitTracker() *normalizedVisitTracker {
	return &normalizedVisitTracker{seen: make(map[string]struct{})}
}

// MarkIfNew stores the URL if it has not been seen before and returns true.
func (t *normalizedVisitTracker) MarkIfNew(url string) bool {
	if url == "" {
		return false
	}
	key, err := NormalizeURL(url)
	if err != nil {
		key = url
	}
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	return true
}

// pauseController abstracts how the crawler waits between requests.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration) error
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
