// Package ratelimit paces outbound messages per destination on top of
// golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per key, all with the same per-minute
// quota. Keys are destinations such as chat IDs; buckets are created on
// first use.
type Limiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// New creates a limiter allowing perMinute calls per key, with a burst of a
// tenth of that (at least one). Zero or negative means unlimited.
func New(perMinute int) *Limiter {
	l := &Limiter{
		limit:   rate.Inf,
		burst:   1,
		buckets: make(map[string]*rate.Limiter),
	}
	if perMinute > 0 {
		l.limit = rate.Limit(float64(perMinute) / 60.0)
		l.burst = max(perMinute/10, 1)
	}
	return l
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	return b
}

// Wait blocks until key may send or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}

// Allow reports whether key may send now, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}
