package middleware

import (
	"net"
	"net/http"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 4096

// RateLimiter throttles requests per client IP. The least recently seen
// clients are forgotten once maxTrackedClients is reached.
type RateLimiter struct {
	limiters *lru.Cache
	rate     rate.Limit
	burst    int
	log      logrus.FieldLogger
}

// NewRateLimiter returns nil when requestsPerSecond is not positive; a nil
// limiter lets every request through.
func NewRateLimiter(requestsPerSecond float64, burst int, log logrus.FieldLogger) (*RateLimiter, error) {
	if requestsPerSecond <= 0 {
		return nil, nil
	}
	if burst < 1 {
		burst = 1
	}
	cache, err := lru.New(maxTrackedClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{limiters: cache, rate: rate.Limit(requestsPerSecond), burst: burst, log: log}, nil
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	// another request for the same key may have raced us; keep whichever won
	if prev, ok, _ := rl.limiters.PeekOrAdd(key, l); ok {
		return prev.(*rate.Limiter)
	}
	return l
}

// Limit wraps next with the per-client limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.limiter(key).Allow() {
			Logger(r.Context(), rl.log).WithFields(logrus.Fields{
				"client": key,
				"path":   r.URL.Path,
			}).Warn("rate limit exceeded")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
