package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/fault"
)

// RateLimitMessage is the client message of a rejected request.
const RateLimitMessage = "Too many requests from this IP, please try again in an hour!"

// RateLimiter allows each client IP limit requests per window. Limiters of
// idle clients expire from the cache after one window.
type RateLimiter struct {
	limit     int
	every     rate.Limit
	limiters  *cache.Cache
	mu        sync.Mutex
	responder *shared.ErrorResponder
}

// NewRateLimiter creates a limiter refilling limit tokens over window.
func NewRateLimiter(limit int, window time.Duration, responder *shared.ErrorResponder) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RateLimiter{
		limit:     limit,
		every:     rate.Every(window / time.Duration(limit)),
		limiters:  cache.New(window, 2*window),
		responder: responder,
	}
}

// limiter returns the limiter of ip, creating it on first use. Every use
// pushes its expiry back by one window.
func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters.Get(ip)
	if !ok {
		l = rate.NewLimiter(rl.every, rl.limit)
	}
	rl.limiters.SetDefault(ip, l)
	return l.(*rate.Limiter)
}

// Middleware rejects requests over the limit with 429 and reports the
// remaining budget in X-RateLimit-* headers.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := rl.limiter(ClientIP(r))
		allowed := l.Allow()

		remaining := int(l.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			rl.responder.Respond(w, r, fault.New(RateLimitMessage, http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the host part of the request's remote address, which
// chi's RealIP middleware has already resolved from proxy headers.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
