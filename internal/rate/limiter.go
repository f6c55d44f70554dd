package rate

import (
	"sync"

	"golang.org/x/time/rate"
)

// KeyLimiter keeps one token bucket per key. It guards the credential
// endpoints against brute forcing, keyed by client IP.
type KeyLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewKeyLimiter(rps float64, burst int) *KeyLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &KeyLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether the key may proceed now.
func (l *KeyLimiter) Allow(key string) bool {
	if l == nil || key == "" {
		return true
	}
	return l.getLimiter(key).Allow()
}

func (l *KeyLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}
