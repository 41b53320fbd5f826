package router

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clocker interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RateLimiter throttles requests per client IP with a token bucket.
// A nil *RateLimiter lets every request through.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	clock   clocker
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMinute per IP with a burst of burst.
// It returns nil when requestsPerMinute <= 0. clk may be nil.
func NewRateLimiter(requestsPerMinute, burst int, clk clocker) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if clk == nil {
		clk = systemClock{}
	}

	return &RateLimiter{
		limit:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   max(burst, 1),
		idle:    10 * time.Minute,
		clock:   clk,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow reports whether key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil {
		return true
	}

	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.clients[key]
	if !ok {
		rl.evictLocked(now)
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) evictLocked(now time.Time) {
	for key, entry := range rl.clients {
		if now.Sub(entry.lastSeen) > rl.idle {
			delete(rl.clients, key)
		}
	}
}

// RateLimit rejects requests over the limiter budget with 429.
func RateLimit(rl *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.Allow(ip) {
				slog.WarnContext(r.Context(), "rate limit exceeded", "ip", ip, "path", matchedRoutePath(r))
				w.Header().Set("Retry-After", "60")
				writeJSON(w, errorResponse{Message: "Too many requests, please slow down"}, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
