package http

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds how fast a single client IP may call a route.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`
	Burst             int     `mapstructure:"burst" validate:"min=0"`
	// IdleTTL is how long an idle client's bucket is kept. Defaults to 3m.
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket limiter.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	rps         rate.Limit
	burst       int
	idleTTL     time.Duration
	lastCleanup time.Time
}

// NewRateLimiter creates a limiter from cfg. A non-positive rate means
// unlimited; a non-positive burst is raised to 1.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rps := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		rps = rate.Inf
	}
	burst := max(cfg.Burst, 1)
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = 3 * time.Minute
	}

	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		rps:         rps,
		burst:       burst,
		idleTTL:     idle,
		lastCleanup: time.Now(),
	}
}

// Allow reports whether a request from ip may proceed now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.getVisitor(ip).Allow()
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) >= rl.idleTTL {
		rl.cleanupLocked(now)
	}

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// cleanupLocked drops buckets idle longer than idleTTL. Cleanup runs
// inline on request traffic, so an idle limiter holds no goroutine.
func (rl *RateLimiter) cleanupLocked(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, ip)
		}
	}
	rl.lastCleanup = now
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware rejects requests over the budget with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			retry := 1
			if rl.rps != rate.Inf && rl.rps > 0 {
				retry = int(math.Ceil(1 / float64(rl.rps)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			HandleError(w, ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RequestLogger logs one line per request. Only the path is logged; the
// query string carries link signatures and stays out of the logs.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", clientIP(r),
		)
	})
}
