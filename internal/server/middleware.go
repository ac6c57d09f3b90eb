package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"kokorolog/internal/logging"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the correlation ID minted for this request.
func RequestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// withRequestID tags every request with a UUID, echoed in the
// x-request-id response header.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := uuid.NewString()
		w.Header().Set("x-request-id", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
	})
}

// openPaths skip both the API key check and the rate limiter.
var openPaths = map[string]bool{
	"/":        true,
	"/healthz": true,
}

// withAPIKey rejects requests without the configured X-API-Key. An
// empty configured key disables the check entirely.
func withAPIKey(apiKey string, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if openPaths[r.URL.Path] || r.Header.Get("X-API-Key") == apiKey {
			next.ServeHTTP(w, r)
			return
		}
		rid := RequestID(r)
		logging.AuthFailure(rid, r.URL.Path)
		writeError(w, r, http.StatusForbidden, "Forbidden")
	})
}

// rateLimiter is a fixed one-minute window counter per (ip, path).
type rateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count int
	start time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{limit: limit, window: time.Minute, buckets: make(map[string]*bucket)}
}

// take counts one hit and reports whether the request is allowed, plus
// the remaining quota and seconds until the window resets.
func (l *rateLimiter) take(key string) (allowed bool, remaining, resetIn int) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, b := range l.buckets {
		if now.Sub(b.start) >= l.window {
			delete(l.buckets, k)
		}
	}
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.window {
		b = &bucket{start: now}
		l.buckets[key] = b
	}
	b.count++
	remaining = l.limit - b.count
	if remaining < 0 {
		remaining = 0
	}
	resetIn = int((l.window - now.Sub(b.start)).Seconds())
	if resetIn < 0 {
		resetIn = 0
	}
	return b.count <= l.limit, remaining, resetIn
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withRateLimit enforces the per-IP-per-path quota. A non-positive
// limit disables it.
func withRateLimit(l *rateLimiter, next http.Handler) http.Handler {
	if l == nil || l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if openPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientIP(r)
		allowed, remaining, resetIn := l.take(ip + "|" + r.URL.Path)
		w.Header().Set("x-ratelimit-limit", strconv.Itoa(l.limit))
		w.Header().Set("x-ratelimit-remaining", strconv.Itoa(remaining))
		w.Header().Set("x-ratelimit-reset", strconv.Itoa(resetIn))
		if !allowed {
			logging.RateLimited(RequestID(r), ip)
			writeError(w, r, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withAccessLog records one line per request with method, path, status
// and latency.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logging.WithRequestID(logging.CategoryServer, RequestID(r)).
			Info("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withRecovery turns handler panics into 500 responses instead of
// killing the connection.
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.WithRequestID(logging.CategoryServer, RequestID(r)).
					Error("panic serving %s: %v", r.URL.Path, rec)
				writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
