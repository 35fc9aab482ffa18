package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCooldownBoundary(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	exact := EvaluateCooldown(now.Add(-2*time.Hour), 2, now)
	assert.True(t, exact.Ready)
	assert.Equal(t, "2:00:00", exact.String())

	short := EvaluateCooldown(now.Add(-2*time.Hour+time.Second), 2, now)
	assert.False(t, short.Ready)
	assert.Equal(t, "1:59:59", short.String())
}

func TestEvaluateCooldownZeroHoursIsAlwaysReady(t *testing.T) {
	now := time.Now()

	assert.True(t, EvaluateCooldown(now, 0, now).Ready)
}

func TestEvaluateCooldownHugeWindowNeverElapses(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, EvaluateCooldown(now, 3_000_000, now).Ready)
	assert.False(t, EvaluateCooldown(now.AddDate(-200, 0, 0), int(MaxCooldownHours)+1, now).Ready)

	c := EvaluateCooldown(now.Add(-time.Hour), int(MaxCooldownHours), now)
	assert.False(t, c.Ready)
	assert.Equal(t, "1:00:00", c.String())
}

func TestEvaluateCooldownTruncatesSubSeconds(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c := EvaluateCooldown(now.Add(-(3*time.Minute + 7*time.Second + 900*time.Millisecond)), 1, now)
	assert.Equal(t, "0:03:07", c.String())
}

func TestMissingFolderCooldownFailsClosed(t *testing.T) {
	c := MissingFolderCooldown()

	assert.False(t, c.Ready)
	assert.Equal(t, ZeroElapsed, c.String())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00:00", FormatElapsed(0))
	assert.Equal(t, "0:00:00", FormatElapsed(-time.Minute))
	assert.Equal(t, "49:03:07", FormatElapsed(49*time.Hour+3*time.Minute+7*time.Second))
}
