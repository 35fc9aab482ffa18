// 文件路径: internal/security/ratelimiter.go
// 模块说明: 固定窗口限流，供 HTTP 中间件与登录节流共用。
package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HardPulse/mazpan/internal/cache"
)

// RateLimiter counts hits per key in fixed windows.
type RateLimiter struct {
	counters cache.Store
	now      func() time.Time
}

// RateResult is the outcome of one Allow call.
type RateResult struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the window closes.
	RetryAfter time.Duration
	ResetAt    time.Time
}

// NewRateLimiter builds a limiter over its own namespace of store.
func NewRateLimiter(store cache.Store) (*RateLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limiter requires counter store / 限流器需要计数存储")
	}
	return &RateLimiter{counters: store.Namespace("rate"), now: time.Now}, nil
}

// Allow records one hit for key and reports whether it fits in limit.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateResult, error) {
	if l == nil {
		return RateResult{}, fmt.Errorf("rate limiter not initialized / 限流器未初始化")
	}
	if limit <= 0 {
		return RateResult{}, fmt.Errorf("rate limit must be positive, got %d / 限额必须为正数", limit)
	}
	if window <= 0 {
		window = time.Minute
	}

	hits, err := l.counters.Increment(ctx, key, 1, window)
	if err != nil {
		return RateResult{}, fmt.Errorf("count %q: %w", key, err)
	}

	left, ok := l.counters.TTL(ctx, key)
	if !ok {
		left = window
	}
	res := RateResult{
		Allowed:    hits <= int64(limit),
		Remaining:  max(limit-int(hits), 0),
		RetryAfter: left,
		ResetAt:    l.now().UTC().Add(left),
	}
	return res, nil
}

// Reset forgets the hits for key, e.g. after a successful login.
func (l *RateLimiter) Reset(ctx context.Context, key string) {
	if l != nil {
		l.counters.Delete(ctx, key)
	}
}

// Key lowercases and joins the non-empty parts with ":".
func Key(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, ":")
}
