// 文件路径: internal/security/audit.go
// 模块说明: 安全审计事件，写入结构化日志。
package security

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Event kinds recorded by the panel.
const (
	KindLoginSucceeded = "auth.login.succeeded"
	KindLoginFailed    = "auth.login.failed"
	KindLoginThrottled = "auth.login.throttled"
	KindAdminAction    = "admin.user.action"
	KindAdminEdit      = "admin.user.edit"
	KindAdminDelete    = "admin.user.delete"
	KindShopPurchase   = "shop.purchase"
	KindRoleUpgrade    = "user.role.upgrade"
)

// Event 表示安全相关的行为。
type Event struct {
	Kind     string
	ActorID  string
	TargetID string
	IP       string
	Metadata map[string]any
	Occurred time.Time
}

// Recorder 记录安全事件，供后续分析。
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LoggerRecorder 将审计事件写入 slog.Logger。
type LoggerRecorder struct {
	logger *slog.Logger
}

// NewLoggerRecorder 返回记录器，写入指定 logger（为空时丢弃）。
func NewLoggerRecorder(logger *slog.Logger) *LoggerRecorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerRecorder{logger: logger.With("component", "audit")}
}

// Record 实现 Recorder 并记录审计事件。
func (r *LoggerRecorder) Record(ctx context.Context, event Event) {
	if r == nil || r.logger == nil {
		return
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	attrs := []any{
		"kind", event.Kind,
		"actor_id", event.ActorID,
		"occurred", event.Occurred.Format(time.RFC3339Nano),
	}
	if event.TargetID != "" {
		attrs = append(attrs, "target_id", event.TargetID)
	}
	if event.IP != "" {
		attrs = append(attrs, "ip", event.IP)
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, "metadata", event.Metadata)
	}
	r.logger.InfoContext(ctx, "audit event", attrs...)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
