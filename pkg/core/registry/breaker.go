package registry

import (
	"context"
	"math"
	"sync"
	"time"

	"fundamental_engine/pkg/apperr"
)

// Breaker is a simple per-dependency circuit breaker: bounded retries
// with exponential backoff before a call is attempted, and an open
// state that short-circuits calls for a cooling period after repeated
// failure.
type Breaker struct {
	mu            sync.Mutex
	maxRetries    int
	coolingPeriod time.Duration
	openUntil     time.Time
}

// NewBreaker constructs a breaker with the given retry budget and
// cooling period.
func NewBreaker(maxRetries int, coolingPeriod time.Duration) *Breaker {
	return &Breaker{maxRetries: maxRetries, coolingPeriod: coolingPeriod}
}

// Open reports whether the breaker is currently short-circuiting calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().Before(b.openUntil)
}

// Do runs fn with bounded retries and exponential backoff (100ms base,
// doubling). If every attempt fails, the breaker opens for
// coolingPeriod and the last error is returned wrapped in
// apperr.UpstreamUnavailable.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if b.Open() {
		return apperr.New(apperr.UpstreamUnavailable, "circuit open, cooling down")
	}

	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*math.Pow(2, float64(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := fn(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	b.mu.Lock()
	b.openUntil = time.Now().Add(b.coolingPeriod)
	b.mu.Unlock()

	return apperr.Wrap(apperr.UpstreamUnavailable, "exhausted retries, opening circuit", lastErr)
}
