package middleware

import (
	"account-ledger/internal/config"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	sharedWindow           = 1 * time.Second
)

// RateLimiterMiddleware limits requests per client IP. With a Redis client the
// budget is a fixed one-second window shared by every replica; without one each
// process keeps its own token buckets.
type RateLimiterMiddleware struct {
	limiters sync.Map
	shared   redis.Cmdable
	cfg      config.RateLimitConfig
	logger   *slog.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, shared redis.Cmdable, logger *slog.Logger) *RateLimiterMiddleware {
	rl := &RateLimiterMiddleware{
		shared: shared,
		cfg:    cfg,
		logger: logger.With("component", "RateLimiter"),
		stop:   make(chan struct{}),
	}

	switch {
	case !cfg.Enabled:
		rl.logger.Info("Rate limiting is disabled via configuration.")
	case shared != nil:
		rl.logger.Info("Rate limiter middleware configured", "backend", "redis", "limit", rl.windowLimit(), "window", sharedWindow)
	default:
		rl.logger.Info("Rate limiter middleware configured", "backend", "memory", "rps", cfg.RPS, "burst", cfg.Burst)
		go rl.cleanupLimiters(limiterCleanupInterval)
	}

	return rl
}

// Stop ends the background cleanup of idle limiters.
func (rl *RateLimiterMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(ip); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiterMiddleware) cleanupLimiters(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.pruneIdle()
		}
	}
}

// pruneIdle drops limiters whose bucket has refilled completely.
func (rl *RateLimiterMiddleware) pruneIdle() {
	now := time.Now()
	rl.limiters.Range(func(key, value interface{}) bool {
		limiter := value.(*rate.Limiter)
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiterMiddleware) windowLimit() int64 {
	if rl.cfg.RPS < 1 {
		return 1
	}
	return int64(rl.cfg.RPS)
}

// allowShared counts the request in the client's current Redis window.
func (rl *RateLimiterMiddleware) allowShared(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s", ip)

	count, err := rl.shared.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rl.shared.Expire(ctx, key, sharedWindow).Err(); err != nil {
			rl.logger.Error("Failed to set Redis EXPIRE for rate limit key", "error", err, "key", key)
		}
	}
	return count <= rl.windowLimit(), nil
}

func (rl *RateLimiterMiddleware) allow(r *http.Request, ip string) bool {
	if rl.shared == nil {
		return rl.getLimiter(ip).Allow()
	}

	allowed, err := rl.allowShared(r.Context(), ip)
	if err != nil {
		rl.logger.Error("Redis rate limit check failed, letting request through", "error", err, "ip", ip)
		return true
	}
	return allowed
}

// extractIP keys on the connection address only. Forwarding headers are
// resolved upstream by chi's RealIP, which may leave RemoteAddr without a port.
func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		if !rl.allow(r, ip) {
			rl.logger.Warn("Rate limit exceeded", "ip", ip)
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded", "RATE_LIMITED")
			return
		}

		next.ServeHTTP(w, r)
	})
}
