package httpserver

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/server/httpserver/handler"
)

// limiterIdle is how long a client's bucket survives without requests.
const limiterIdle = 3 * time.Minute

// RateLimit gives each client IP a token bucket refilled at
// requestsPerSecond. Rejected requests get 429 with Retry-After.
func RateLimit(requestsPerSecond float64, burst int, clientIP func(*http.Request) string) Middleware {
	buckets := newIPLimiters(rate.Limit(requestsPerSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !buckets.allow(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				handler.WriteError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

func newIPLimiters(limit rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{
		limit:     limit,
		burst:     max(burst, 1),
		buckets:   make(map[string]*bucket),
		nextSweep: time.Now().Add(limiterIdle),
	}
}

func (l *ipLimiters) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) > limiterIdle {
				delete(l.buckets, key)
			}
		}
		l.nextSweep = now.Add(limiterIdle)
	}

	b := l.buckets[ip]
	if b == nil {
		b = &bucket{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.AllowN(now, 1)
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
