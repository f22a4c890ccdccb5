package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupThreshold = 500
	limiterMaxIdleAge       = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP and prunes idle buckets
// once the map grows past limiterCleanupThreshold.
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewIPRateLimiter allows perMinute requests per IP with the given burst.
// A non-positive perMinute disables limiting and returns nil.
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	if l == nil {
		return true
	}
	return l.limiterFor(ip).AllowN(l.now(), 1)
}

func (l *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.entries) > limiterCleanupThreshold {
		cutoff := now.Add(-limiterMaxIdleAge)
		for key, entry := range l.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(l.entries, key)
			}
		}
	}

	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}
