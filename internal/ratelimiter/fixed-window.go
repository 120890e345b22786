package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type Limiter interface {
	// Allow reports whether key may proceed and, if not, how long to wait.
	Allow(key string) (bool, time.Duration)
}

// FixedWindowRateLimiter counts requests per key in windows that start with
// the key's first request.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	span    time.Duration
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(limit int, span time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		span:    span,
		now:     time.Now,
	}
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.span {
		rl.evict(now)
		rl.clients[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}
	return false, w.start.Add(rl.span).Sub(now)
}

// evict drops expired windows so idle clients do not accumulate.
func (rl *FixedWindowRateLimiter) evict(now time.Time) {
	for k, w := range rl.clients {
		if now.Sub(w.start) >= rl.span {
			delete(rl.clients, k)
		}
	}
}
