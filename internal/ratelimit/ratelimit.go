// Package ratelimit spaces scrape attempts to respect target-site and
// proxy-provider limits. The delay applies after every attempt regardless
// of outcome.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type Limiter interface {
	Wait(ctx context.Context) error
	SetDelay(min, max time.Duration)
}

// IntervalLimiter enforces a minimum interval between actions. With
// min != max a random jitter inside the window is applied, which keeps the
// fan-out from looking mechanical to the target sites.
type IntervalLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewIntervalLimiter(minDelay, maxDelay time.Duration) *IntervalLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &IntervalLimiter{minDelay: minDelay, maxDelay: maxDelay}
}

func (l *IntervalLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastAction)
	delay := l.nextDelay()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	l.lastAction = time.Now()
	return nil
}

func (l *IntervalLimiter) SetDelay(min, max time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minDelay = min
	l.maxDelay = max
	if l.maxDelay < l.minDelay {
		l.maxDelay = l.minDelay
	}
}

func (l *IntervalLimiter) nextDelay() time.Duration {
	if l.minDelay >= l.maxDelay {
		return l.minDelay
	}
	return l.minDelay + time.Duration(rand.Int63n(int64(l.maxDelay-l.minDelay)))
}
