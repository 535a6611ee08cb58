package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type rateLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one token bucket per client IP.
type RateLimitMiddleware struct {
	limiters map[string]*rateLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	cleanup  time.Duration

	trustProxy bool
}

// NewRateLimitMiddleware starts a janitor goroutine that lives until ctx is
// done. Clients are keyed by proxy headers only when trustProxy is set.
func NewRateLimitMiddleware(ctx context.Context, rps float64, burst int, trustProxy bool) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{
		limiters:   make(map[string]*rateLimiter),
		rate:       rate.Limit(rps),
		burst:      burst,
		cleanup:    5 * time.Minute,
		trustProxy: trustProxy,
	}

	go rl.cleanupLimiters(ctx)
	return rl
}

func (rl *RateLimitMiddleware) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for key, limiter := range rl.limiters {
				if time.Since(limiter.lastSeen) > rl.cleanup {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = &rateLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = limiter
	}
	limiter.lastSeen = time.Now()
	return limiter.limiter
}

func (rl *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(ClientIP(r, rl.trustProxy)).Allow() {
			w.Header().Set("Retry-After", "60")
			JSONError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Слишком много запросов, попробуйте позже", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
