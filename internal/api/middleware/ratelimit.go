package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/config"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key. Buckets idle for longer
// than the cleanup threshold are dropped on the next sweep.
type RateLimiter struct {
	mu       sync.Mutex
	limits   map[string]*clientLimiter
	every    time.Duration
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
	lastScan time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter admitting cfg.RequestsPerWindow requests
// per cfg.Window() with cfg.Burst tokens of headroom.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	window := cfg.Window()
	perRequest := window / time.Duration(cfg.RequestsPerWindow)
	return &RateLimiter{
		limits:  make(map[string]*clientLimiter),
		every:   perRequest,
		burst:   cfg.Burst,
		idleTTL: 2 * window,
		now:     time.Now,
	}
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).AllowN(rl.now(), 1)
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastScan) > rl.idleTTL {
		for k, cl := range rl.limits {
			if now.Sub(cl.lastSeen) > rl.idleTTL {
				delete(rl.limits, k)
			}
		}
		rl.lastScan = now
	}

	cl, ok := rl.limits[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(rl.every), rl.burst)}
		rl.limits[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// Middleware rejects requests over the limit with 429. Clients are keyed by
// IP; install chi's RealIP first when running behind a proxy.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(max(time.Second, rl.every).Round(time.Second) / time.Second))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", retryAfter)
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Too many requests, please try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
