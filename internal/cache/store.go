// 文件路径: internal/cache/store.go
// 模块说明: 进程内计数器（go-cache），用于请求限流与登录节流。
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a namespaced set of expiring counters.
type Store interface {
	// Increment adds delta to key. The first hit opens a window of the given length
	// and later hits do not extend it.
	Increment(ctx context.Context, key string, delta int64, window time.Duration) (int64, error)
	// TTL reports how long the window of key stays open.
	TTL(ctx context.Context, key string) (time.Duration, bool)
	Delete(ctx context.Context, key string)
	Namespace(prefix string) Store
}

// Options configure NewStore.
type Options struct {
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Prefix          string
}

// NewStore returns a go-cache backed Store.
func NewStore(opts Options) Store {
	window := opts.DefaultWindow
	if window <= 0 {
		window = time.Minute
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = window
	}
	return &counterStore{
		backend: gocache.New(window, cleanup),
		window:  window,
		prefix:  joinKey(opts.Prefix),
	}
}

type counterStore struct {
	backend *gocache.Cache
	window  time.Duration
	prefix  string
}

func (s *counterStore) Increment(_ context.Context, key string, delta int64, window time.Duration) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, fmt.Errorf("cache: empty counter key / 计数键为空")
	}
	if window <= 0 {
		window = s.window
	}
	full := s.key(key)
	var lastErr error
	// 两次尝试：Add 与 IncrementInt64 之间窗口可能恰好过期。
	for attempt := 0; attempt < 2; attempt++ {
		// Add fails only when the window is already open.
		_ = s.backend.Add(full, int64(0), window)
		n, err := s.backend.IncrementInt64(full, delta)
		if err == nil {
			return n, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("cache: increment %q: %w", key, lastErr)
}

func (s *counterStore) TTL(_ context.Context, key string) (time.Duration, bool) {
	_, exp, ok := s.backend.GetWithExpiration(s.key(key))
	if !ok || exp.IsZero() {
		return 0, false
	}
	if left := time.Until(exp); left > 0 {
		return left, true
	}
	return 0, false
}

func (s *counterStore) Delete(_ context.Context, key string) {
	s.backend.Delete(s.key(key))
}

func (s *counterStore) Namespace(prefix string) Store {
	return &counterStore{
		backend: s.backend,
		window:  s.window,
		prefix:  joinKey(s.prefix, prefix),
	}
}

func (s *counterStore) key(key string) string {
	return joinKey(s.prefix, key)
}

func joinKey(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, ": "); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}
