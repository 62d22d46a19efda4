package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"customer-registry/internal/config"

	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 10 * time.Minute

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type RateLimiterMiddleware struct {
	limiter Limiter
	cfg     config.RateLimitConfig
	logger  *slog.Logger
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, limiter Limiter, logger *slog.Logger) *RateLimiterMiddleware {
	if cfg.Enabled && limiter == nil {
		logger.Warn("Rate limiting enabled but no limiter provided; disabling.")
		cfg.Enabled = false
	}
	return &RateLimiterMiddleware{
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

func (rl *RateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		allowed, err := rl.limiter.Allow(r.Context(), ip)
		if err != nil {
			// Fail open.
			rl.logger.ErrorContext(r.Context(), "Rate limiter check failed", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MemoryLimiter keeps one token bucket per key in process memory.
type MemoryLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryLimiter(cfg config.RateLimitConfig) *MemoryLimiter {
	m := &MemoryLimiter{
		rps:   rate.Limit(cfg.RPS),
		burst: cfg.Burst,
		stop:  make(chan struct{}),
	}

	go m.cleanupLoop(limiterCleanupInterval)

	return m
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return m.getLimiter(key).Allow(), nil
}

func (m *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := m.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(m.rps, m.burst))
	return limiter.(*rate.Limiter)
}

// Stop ends the cleanup loop. Safe to call more than once.
func (m *MemoryLimiter) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *MemoryLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.cleanup(now)
		}
	}
}

// cleanup drops buckets that have refilled completely.
func (m *MemoryLimiter) cleanup(now time.Time) {
	m.limiters.Range(func(key, value interface{}) bool {
		if value.(*rate.Limiter).TokensAt(now) >= float64(m.burst) {
			m.limiters.Delete(key)
		}
		return true
	})
}

func (m *MemoryLimiter) String() string {
	return fmt.Sprintf("memory(rps=%v, burst=%d)", float64(m.rps), m.burst)
}
