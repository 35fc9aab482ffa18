// 文件路径: internal/inventory/pool.go
// 模块说明: 账号池的纯函数逻辑：行拆分、合成上传时间、按账龄取货（FIFO）。
package inventory

import (
	"errors"
	"math"
	"strings"
	"time"
)

// LineSpacing is the synthetic gap between two consecutive pool lines.
const LineSpacing = time.Minute

// MaxAgeHours is the largest age filter a time.Duration can hold.
const MaxAgeHours = math.MaxInt64 / int64(time.Hour)

// MinAgeFromHours converts an hour filter into a duration. A filter longer than
// MaxAgeHours cannot be met by any line and yields ErrNotEnoughAged.
func MinAgeFromHours(hours int) (time.Duration, error) {
	if int64(hours) > MaxAgeHours {
		return 0, ErrNotEnoughAged
	}
	return time.Duration(hours) * time.Hour, nil
}

// ErrNotEnoughAged indicates fewer lines satisfy the age filter than were requested.
var ErrNotEnoughAged = errors.New("inventory: not enough lines satisfy the age filter / 满足账龄条件的库存不足")

// ErrNotEnoughLines indicates the pool holds fewer lines than requested.
var ErrNotEnoughLines = errors.New("inventory: not enough lines / 库存不足")

// SplitLines returns the non-blank, trimmed lines of a pool blob in stored order.
func SplitLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// Normalize drops blank lines and reports how many sellable lines remain.
func Normalize(content string) (string, int) {
	lines := SplitLines(content)
	return JoinLines(lines), len(lines)
}

// LineTime is the synthetic upload time of the line at index.
func LineTime(createdAt time.Time, index int) time.Time {
	return createdAt.Add(time.Duration(index) * LineSpacing)
}

// LineAge is how old the line at index is at now.
func LineAge(createdAt time.Time, index int, now time.Time) time.Duration {
	return now.Sub(LineTime(createdAt, index))
}

// Selection is the outcome of taking lines from a pool.
type Selection struct {
	Delivered []string
	Remaining []string
}

// Take removes quantity lines from the front of the pool. With a positive minAge only
// lines at least that old qualify; the scan runs oldest first and the whole request
// fails when fewer lines qualify than requested.
func Take(lines []string, createdAt time.Time, quantity int, minAge time.Duration, now time.Time) (Selection, error) {
	if quantity <= 0 || quantity > len(lines) {
		return Selection{}, ErrNotEnoughLines
	}
	picked := make(map[int]struct{}, quantity)
	for i := range lines {
		if len(picked) == quantity {
			break
		}
		if minAge > 0 && LineAge(createdAt, i, now) < minAge {
			continue
		}
		picked[i] = struct{}{}
	}
	if len(picked) < quantity {
		return Selection{}, ErrNotEnoughAged
	}

	sel := Selection{
		Delivered: make([]string, 0, quantity),
		Remaining: make([]string, 0, len(lines)-quantity),
	}
	for i, line := range lines {
		if _, ok := picked[i]; ok {
			sel.Delivered = append(sel.Delivered, line)
			continue
		}
		sel.Remaining = append(sel.Remaining, line)
	}
	return sel, nil
}
