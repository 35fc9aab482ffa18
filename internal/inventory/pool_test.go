package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsBlankLines(t *testing.T) {
	content, count := Normalize("a\n\n  b  \r\n\nc\n")

	assert.Equal(t, "a\nb\nc", content)
	assert.Equal(t, 3, count)
}

func TestTakeWithoutFilterIsFIFO(t *testing.T) {
	now := time.Now()
	lines := []string{"l0", "l1", "l2", "l3"}

	sel, err := Take(lines, now, 2, 0, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"l0", "l1"}, sel.Delivered)
	assert.Equal(t, []string{"l2", "l3"}, sel.Remaining)
}

func TestTakeRejectsOversizedRequest(t *testing.T) {
	_, err := Take([]string{"a"}, time.Now(), 2, 0, time.Now())
	assert.ErrorIs(t, err, ErrNotEnoughLines)

	_, err = Take([]string{"a"}, time.Now(), 0, 0, time.Now())
	assert.ErrorIs(t, err, ErrNotEnoughLines)
}

func TestTakeAgeFilterNoPartialFulfilment(t *testing.T) {
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	// line i was "uploaded" at created + i minutes; at now the first two are >= 2h old.
	now := created.Add(2*time.Hour + time.Minute)
	lines := []string{"l0", "l1", "l2", "l3"}

	sel, err := Take(lines, created, 2, 2*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"l0", "l1"}, sel.Delivered)
	assert.Equal(t, []string{"l2", "l3"}, sel.Remaining)

	_, err = Take(lines, created, 3, 2*time.Hour, now)
	assert.ErrorIs(t, err, ErrNotEnoughAged)
}

func TestBucketize(t *testing.T) {
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(36 * time.Hour)

	// 3 lines: ages 36h, 35h59m, 35h58m
	b := Bucketize(created, 3, now)
	assert.Equal(t, 1, b.OverThirtySix)
	assert.Equal(t, 2, b.DayToThirtySix)
	assert.Equal(t, 3, b.Total())

	fresh := Bucketize(now, 2, now)
	assert.Equal(t, 2, fresh.UnderOneHour)
}

func TestBucketBoundariesAreLowerInclusive(t *testing.T) {
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		age  time.Duration
		pick func(AgeBuckets) int
	}{
		{time.Hour, func(b AgeBuckets) int { return b.OneToFour }},
		{4 * time.Hour, func(b AgeBuckets) int { return b.FourToTwelve }},
		{12 * time.Hour, func(b AgeBuckets) int { return b.TwelveToDay }},
		{24 * time.Hour, func(b AgeBuckets) int { return b.DayToThirtySix }},
		{36 * time.Hour, func(b AgeBuckets) int { return b.OverThirtySix }},
	} {
		b := Bucketize(created, 1, created.Add(tc.age))
		assert.Equal(t, 1, tc.pick(b), "age %s", tc.age)
	}
}

func TestMinAgeFromHours(t *testing.T) {
	d, err := MinAgeFromHours(3)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour, d)

	d, err = MinAgeFromHours(int(MaxAgeHours))
	require.NoError(t, err)
	assert.Positive(t, d)

	_, err = MinAgeFromHours(int(MaxAgeHours) + 1)
	assert.ErrorIs(t, err, ErrNotEnoughAged)
}
