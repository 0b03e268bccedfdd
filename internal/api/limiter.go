package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"lendhub/internal/config"
)

// rateLimiter enforces a per-caller request budget. Callers are keyed by
// the identity header when present, otherwise by remote address.
type rateLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 20
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rps) * 2
	}
	return &rateLimiter{
		rps:   rate.Limit(rps),
		burst: burst,
	}
}

func (l *rateLimiter) limiterFor(key string) *rate.Limiter {
	if lim, ok := l.limiters.Load(key); ok {
		return lim.(*rate.Limiter)
	}
	lim, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return lim.(*rate.Limiter)
}

func clientKey(r *http.Request) string {
	if id := r.Header.Get(userIDHeader); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}

func (l *rateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiterFor(clientKey(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
