package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go-vaccination-booking/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client. Clients are keyed by the
// authenticated user when present, otherwise by remote IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perMinute, burst int, log *logrus.Logger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		log:      log,
		now:      time.Now,
	}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, exists := l.limiters[key]
	if !exists {
		l.sweep(now)
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops limiters idle longer than idleTTL; caller holds mu
func (l *RateLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.limiters, key)
		}
	}
}

func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.getLimiter(key).AllowN(l.now(), 1) {
			l.log.WithField("client", key).Warn("Rate limit exceeded")
			response.TooManyRequests(w, "Rate limit exceeded. Try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return "ip:" + strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
