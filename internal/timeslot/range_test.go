package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesBounds(t *testing.T) {
	_, err := New(540, 60)
	assert.NoError(t, err)

	_, err = New(-10, 60)
	assert.Error(t, err, "negative start must be rejected")

	_, err = New(540, 0)
	assert.Error(t, err, "zero duration must be rejected")

	_, err = New(1430, 30)
	assert.Error(t, err, "range crossing midnight must be rejected")
}

func TestOverlapsIsSymmetric(t *testing.T) {
	ranges := []Range{
		{Start: 540, End: 600},
		{Start: 570, End: 630},
		{Start: 600, End: 660},
		{Start: 0, End: 1440},
		{Start: 720, End: 750},
	}
	for _, a := range ranges {
		for _, b := range ranges {
			assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "overlap must be symmetric for %v and %v", a, b)
		}
	}
}

func TestTouchingRangesDoNotOverlap(t *testing.T) {
	morning := Range{Start: 540, End: 600} // 9:00-10:00
	next := Range{Start: 600, End: 660}    // 10:00-11:00

	assert.False(t, morning.Overlaps(next))
	assert.False(t, next.Overlaps(morning))
}

func TestOverlapCases(t *testing.T) {
	base := Range{Start: 600, End: 660}

	assert.True(t, base.Overlaps(Range{Start: 630, End: 690}), "partial overlap at tail")
	assert.True(t, base.Overlaps(Range{Start: 570, End: 630}), "partial overlap at head")
	assert.True(t, base.Overlaps(Range{Start: 610, End: 650}), "contained range")
	assert.True(t, base.Overlaps(Range{Start: 540, End: 720}), "containing range")
	assert.False(t, base.Overlaps(Range{Start: 660, End: 720}), "adjacent after")
	assert.False(t, base.Overlaps(Range{Start: 480, End: 600}), "adjacent before")
}

func TestContains(t *testing.T) {
	block := Range{Start: 540, End: 1020}

	assert.True(t, block.Contains(Range{Start: 540, End: 600}))
	assert.True(t, block.Contains(Range{Start: 960, End: 1020}))
	assert.False(t, block.Contains(Range{Start: 500, End: 600}))
	assert.False(t, block.Contains(Range{Start: 1000, End: 1080}))
}

func TestParseClock(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"09:00": 540,
		"10:30": 630,
		"23:59": 1439,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:30:00"} {
		_, err := ParseClock(in)
		assert.Error(t, err, "expected %q to be rejected", in)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, m := range []int{0, 540, 630, 1439} {
		got, err := ParseClock(FormatClock(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestParseDateDerivesWeekday(t *testing.T) {
	// 2025-03-05 is a Wednesday; the weekday comes from the date alone.
	d, err := ParseDate("2025-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, d.Weekday())

	_, err = ParseDate("05-03-2025")
	assert.Error(t, err)
}

func TestAtMinute(t *testing.T) {
	d, err := ParseDate("2025-03-05")
	require.NoError(t, err)

	at := AtMinute(d, 630)
	assert.Equal(t, 10, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, 630, MinuteOfDay(at))
	assert.Equal(t, d.Day(), at.Day())
}
