package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// rateLimiter caps write requests per client IP over a fixed window.
// Counters live in memory only, so a restart forgets them; fine for a
// single-instance deployment.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	counters map[string]*windowCounter

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// windowCounter tracks one client's requests in its current window.
// The window is anchored at the first request, not sliding.
type windowCounter struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		limit:       limit,
		window:      window,
		counters:    make(map[string]*windowCounter),
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// allow records one request for clientIP and reports whether it still
// fits the configured limit.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.counters[clientIP]
	if !ok || now.Sub(c.windowStart) > rl.window {
		rl.counters[clientIP] = &windowCounter{windowStart: now, count: 1}
		return true
	}

	c.count++
	if c.count > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// cleanupLoop drops counters whose window expired long ago, so the map
// does not grow with every IP that ever hit the API.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropExpired()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) dropExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-2 * rl.window)
	for ip, c := range rl.counters {
		if c.windowStart.Before(cutoff) {
			delete(rl.counters, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}
