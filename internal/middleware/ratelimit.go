// Package middleware provides HTTP middleware for the site that chi's own
// middleware package does not cover.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	staleBucketAge = 10 * time.Minute
	sweepInterval  = 5 * time.Minute
)

// TokenBucket is an in-memory per-key rate limiter. It is safe for
// concurrent use. Buckets idle for longer than staleBucketAge are dropped.
type TokenBucket struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      float64 // tokens added per second
	capacity  float64 // maximum tokens
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter that allows bursts of capacity requests
// per key, refilling at rate tokens per second.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	return &TokenBucket{
		buckets:   make(map[string]*bucket),
		rate:      rate,
		capacity:  capacity,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow consumes one token for key and reports whether one was available.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if now.Sub(tb.lastSweep) >= sweepInterval {
		tb.sweep(now)
	}

	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens = min(b.tokens+elapsed*tb.rate, tb.capacity)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// sweep removes stale buckets. Callers hold mu.
func (tb *TokenBucket) sweep(now time.Time) {
	cutoff := now.Add(-staleBucketAge)
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
	tb.lastSweep = now
}

// RateLimit rejects requests from a client IP once its bucket is empty.
// Mount it after chi's RealIP so RemoteAddr is the client's address.
func RateLimit(tb *TokenBucket, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !tb.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Demasiados intentos. Intenta de nuevo más tarde.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
