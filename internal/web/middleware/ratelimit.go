package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter keeps a token bucket per client address
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimiter allows requestsPerWindow requests per window per client, with bursts of
// up to burst requests. Idle client buckets are forgotten after a few windows.
func NewRateLimiter(requestsPerWindow int, window time.Duration, burst int) *RateLimiter {
	if burst <= 0 {
		burst = requestsPerWindow / 10 // Default burst to 10% of window
		if burst < 1 {
			burst = 1
		}
	}

	return &RateLimiter{
		limit:    rate.Every(window / time.Duration(requestsPerWindow)),
		burst:    burst,
		limiters: cache.New(5*window, 10*window),
	}
}

func (rl *RateLimiter) limiterFor(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, found := rl.limiters.Get(client); found {
		limiter := v.(*rate.Limiter)
		rl.limiters.SetDefault(client, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.SetDefault(client, limiter)
	return limiter
}

// Allow reports whether client may make a request now
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	reservation := rl.limiterFor(client).Reserve()
	if !reservation.OK() {
		return false, 0
	}
	delay := reservation.Delay()
	if delay == 0 {
		return true, 0
	}
	reservation.Cancel()
	return false, delay
}

// Middleware rejects requests over the limit with 429 and a Retry-After header
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := rl.Allow(clientAddr(r))
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			http.Error(w, "Too many requests. Please wait and try again.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr strips the port from RemoteAddr, which chi's RealIP may already have rewritten
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
