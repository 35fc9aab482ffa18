// 文件路径: internal/api/middleware/logging.go
// 模块说明: 访问日志中间件：请求 ID、调用者、语言与慢请求告警。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// LoggingConfig configures StructuredLogger.
type LoggingConfig struct {
	Logger        *slog.Logger
	SlowThreshold time.Duration // 超过阈值的成功请求记为 WARN
	SkipPaths     []string
}

// DefaultLoggingConfig skips probes and the metrics scrape.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Logger:        slog.Default(),
		SlowThreshold: 500 * time.Millisecond,
		SkipPaths:     []string{"/health", "/healthz", "/api/health", "/metrics"},
	}
}

// accessEntry is filled by inner middleware, the logger reads it after the handler returns.
type accessEntry struct {
	userID string
	role   string
	lang   string
}

type accessEntryKey struct{}

// annotateCaller records the authenticated caller on the access log entry, if any.
func annotateCaller(ctx context.Context, userID, role string) {
	if e, ok := ctx.Value(accessEntryKey{}).(*accessEntry); ok {
		e.userID = userID
		e.role = role
	}
}

func annotateLanguage(ctx context.Context, lang string) {
	if e, ok := ctx.Value(accessEntryKey{}).(*accessEntry); ok {
		e.lang = lang
	}
}

// StructuredLogger writes one record per request. 5xx are ERROR, 4xx and slow requests WARN.
func StructuredLogger(cfg LoggingConfig) func(http.Handler) http.Handler {
	def := DefaultLoggingConfig()
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = def.SlowThreshold
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID == "" {
				requestID = "-"
			}
			entry := &accessEntry{}
			r = r.WithContext(context.WithValue(r.Context(), accessEntryKey{}, entry))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", routePattern(r)),
				slog.Int("status", status),
				slog.Duration("duration", elapsed),
				slog.Int("bytes", ww.BytesWritten()),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if entry.lang != "" {
				attrs = append(attrs, slog.String("lang", entry.lang))
			}
			if entry.userID != "" {
				attrs = append(attrs, slog.String("user_id", entry.userID), slog.String("role", entry.role))
			}

			level, msg := slog.LevelInfo, "request completed"
			switch {
			case status >= http.StatusInternalServerError:
				level, msg = slog.LevelError, "request failed"
			case status >= http.StatusBadRequest:
				level, msg = slog.LevelWarn, "request rejected"
			case elapsed > cfg.SlowThreshold:
				level, msg = slog.LevelWarn, "slow request"
			}
			cfg.Logger.LogAttrs(r.Context(), level, msg, attrs...)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
