// 文件路径: internal/account/cooldown.go
// 模块说明: 冷却判断，列表展示与批量筛选共用同一个函数，保证阈值语义一致。
package account

import (
	"fmt"
	"math"
	"time"
)

// MaxCooldownHours is the longest window a time.Duration can hold; longer windows never elapse.
const MaxCooldownHours = math.MaxInt64 / int64(time.Hour)

// ZeroElapsed is reported for records whose folder cannot be resolved.
const ZeroElapsed = "0:00:00"

// Cooldown is the evaluated freshness of one record.
type Cooldown struct {
	Ready   bool
	Elapsed time.Duration
}

// String renders the elapsed time as H:MM:SS.
func (c Cooldown) String() string {
	return FormatElapsed(c.Elapsed)
}

// EvaluateCooldown reports whether cooldownHours have passed since uploadedAt.
// The threshold is inclusive: exactly cooldownHours later the record is ready.
func EvaluateCooldown(uploadedAt time.Time, cooldownHours int, now time.Time) Cooldown {
	elapsed := now.Sub(uploadedAt).Truncate(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if int64(cooldownHours) > MaxCooldownHours {
		return Cooldown{Elapsed: elapsed}
	}
	window := time.Duration(cooldownHours) * time.Hour
	return Cooldown{
		Ready:   now.Sub(uploadedAt) >= window,
		Elapsed: elapsed,
	}
}

// MissingFolderCooldown 文件夹丢失时按未冷却处理（fail-closed）。
func MissingFolderCooldown() Cooldown {
	return Cooldown{}
}

// FormatElapsed 输出 H:MM:SS，小时不设上限，亚秒部分直接截断。
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
