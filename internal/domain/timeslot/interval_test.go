//go:build unit

package timeslot_test

import (
	"testing"
	"time"

	"escrowbook/internal/domain/timeslot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func iv(sh, sm, eh, em int) timeslot.Interval {
	return timeslot.Interval{Start: at(sh, sm), End: at(eh, em)}
}

func TestNew(t *testing.T) {
	_, err := timeslot.New(at(10, 0), at(9, 0))
	assert.ErrorIs(t, err, timeslot.ErrInvalidInterval)

	_, err = timeslot.New(at(9, 0), at(9, 0))
	assert.ErrorIs(t, err, timeslot.ErrInvalidInterval)

	got, err := timeslot.New(at(9, 0), at(10, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, got.Duration())
}

func TestOverlaps(t *testing.T) {
	base := iv(10, 0, 11, 0)

	assert.True(t, base.Overlaps(iv(10, 30, 11, 30)))
	assert.True(t, base.Overlaps(iv(9, 30, 10, 30)))
	assert.True(t, base.Overlaps(iv(10, 15, 10, 45)))
	assert.True(t, base.Overlaps(iv(9, 0, 12, 0)))
	// Half-open: touching endpoints do not overlap.
	assert.False(t, base.Overlaps(iv(11, 0, 12, 0)))
	assert.False(t, base.Overlaps(iv(9, 0, 10, 0)))
	assert.False(t, base.Overlaps(iv(12, 0, 13, 0)))
}

func TestExpand(t *testing.T) {
	got := iv(10, 0, 10, 30).Expand(15*time.Minute, 15*time.Minute)
	assert.Equal(t, iv(9, 45, 10, 45), got)

	// Negative amounts never shrink.
	got = iv(10, 0, 10, 30).Expand(-time.Hour, -time.Hour)
	assert.Equal(t, iv(10, 0, 10, 30), got)
}

func TestClamp(t *testing.T) {
	bounds := iv(9, 0, 17, 0)

	got, ok := iv(8, 0, 10, 0).Clamp(bounds)
	require.True(t, ok)
	assert.Equal(t, iv(9, 0, 10, 0), got)

	got, ok = iv(16, 0, 18, 0).Clamp(bounds)
	require.True(t, ok)
	assert.Equal(t, iv(16, 0, 17, 0), got)

	_, ok = iv(18, 0, 19, 0).Clamp(bounds)
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	assert.Nil(t, timeslot.Merge(nil))

	got := timeslot.Merge([]timeslot.Interval{
		iv(13, 0, 14, 0),
		iv(9, 0, 10, 0),
		iv(9, 30, 11, 0),
		iv(11, 0, 12, 0), // touching gets coalesced
	})
	assert.Equal(t, []timeslot.Interval{iv(9, 0, 12, 0), iv(13, 0, 14, 0)}, got)
}

func TestSubtract(t *testing.T) {
	windows := []timeslot.Interval{iv(9, 0, 17, 0)}

	t.Run("no blocks returns merged windows", func(t *testing.T) {
		got := timeslot.Subtract(windows, nil)
		assert.Equal(t, windows, got)
	})

	t.Run("block in the middle splits the window", func(t *testing.T) {
		got := timeslot.Subtract(windows, []timeslot.Interval{iv(12, 0, 13, 0)})
		assert.Equal(t, []timeslot.Interval{iv(9, 0, 12, 0), iv(13, 0, 17, 0)}, got)
	})

	t.Run("blocks covering the window leave nothing", func(t *testing.T) {
		got := timeslot.Subtract(windows, []timeslot.Interval{iv(8, 0, 18, 0)})
		assert.Empty(t, got)
	})

	t.Run("overlapping blocks are merged first", func(t *testing.T) {
		got := timeslot.Subtract(windows, []timeslot.Interval{
			iv(10, 0, 11, 0),
			iv(10, 30, 11, 30),
		})
		assert.Equal(t, []timeslot.Interval{iv(9, 0, 10, 0), iv(11, 30, 17, 0)}, got)
	})
}

func TestSlots(t *testing.T) {
	t.Run("full day of half-hour slots", func(t *testing.T) {
		got := timeslot.Slots(iv(9, 0, 17, 0), 30*time.Minute)
		require.Len(t, got, 16)
		assert.Equal(t, iv(9, 0, 9, 30), got[0])
		assert.Equal(t, iv(16, 30, 17, 0), got[15])
	})

	t.Run("remainder shorter than the slot is dropped", func(t *testing.T) {
		got := timeslot.Slots(iv(9, 0, 10, 15), 30*time.Minute)
		assert.Len(t, got, 2)
	})

	t.Run("non-positive length", func(t *testing.T) {
		assert.Nil(t, timeslot.Slots(iv(9, 0, 17, 0), 0))
	})
}

func TestFirstConflict(t *testing.T) {
	blocked := []timeslot.Interval{iv(10, 0, 11, 0), iv(14, 0, 15, 0)}

	got, ok := timeslot.FirstConflict(iv(10, 30, 11, 30), blocked)
	require.True(t, ok)
	assert.Equal(t, iv(10, 0, 11, 0), got)

	_, ok = timeslot.FirstConflict(iv(11, 0, 12, 0), blocked)
	assert.False(t, ok)
}

func TestFits(t *testing.T) {
	windows := []timeslot.Interval{iv(9, 0, 17, 0)}
	blocked := []timeslot.Interval{iv(9, 45, 10, 45)}

	assert.True(t, timeslot.Fits(iv(11, 0, 11, 30), windows, blocked))
	assert.False(t, timeslot.Fits(iv(10, 0, 10, 30), windows, blocked), "overlaps blocked")
	assert.False(t, timeslot.Fits(iv(16, 45, 17, 15), windows, blocked), "spills past window end")
	assert.False(t, timeslot.Fits(iv(8, 0, 8, 30), windows, blocked), "outside windows")
}

func TestTotalDuration(t *testing.T) {
	got := timeslot.TotalDuration([]timeslot.Interval{
		iv(9, 0, 10, 0),
		iv(9, 30, 10, 30), // overlap counted once
		iv(13, 0, 13, 30),
	})
	assert.Equal(t, 2*time.Hour, got)
}
