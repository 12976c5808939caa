// Package ratelimit provides a keyed token-bucket rate limiter for
// inbound request protection.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// defaultMaxKeys bounds the tracked key set. Keys are client addresses
// and therefore attacker-controlled; without a cap a scan from spoofed
// addresses grows the map without limit.
const defaultMaxKeys = 10000

// KeyedRateLimiter manages per-key rate limiting. Each unique key gets
// its own independent token bucket.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	maxKeys  int
}

// New creates a new keyed rate limiter.
// rps: requests per second allowed per key.
// burst: maximum burst size (tokens available immediately).
func New(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		maxKeys:  defaultMaxKeys,
	}
}

// Allow reports whether a request for the given key should be allowed.
// Returns immediately without blocking.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// getLimiter returns the limiter for a key, creating one if needed.
// When the tracked set exceeds maxKeys the map is reset wholesale;
// resetting refills every bucket, which errs toward allowing traffic
// rather than penalizing clients that happen to survive an eviction.
func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	if limiter, ok := krl.limiters[key]; ok {
		return limiter
	}

	if len(krl.limiters) >= krl.maxKeys {
		krl.limiters = make(map[string]*rate.Limiter)
	}

	limiter := rate.NewLimiter(krl.limit, krl.burst)
	krl.limiters[key] = limiter
	return limiter
}

// Len reports how many keys are currently tracked.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.limiters)
}
