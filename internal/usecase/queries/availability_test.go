//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"escrowbook/internal/domain/offering"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra"
	"escrowbook/internal/pkg/clock"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/queries"
	"escrowbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOfferings struct {
	off *offering.Offering
}

func (f *fakeOfferings) FindByID(_ context.Context, _ uuid.UUID) (*offering.Offering, error) {
	if f.off == nil {
		return nil, infra.WrapRepoErr("offering not found", nil, infra.KindNotFound)
	}
	return f.off, nil
}

type fakeBlocked struct {
	intervals []timeslot.Interval
}

func (f *fakeBlocked) CommittedWindows(_ context.Context, _ uuid.UUID, _ timeslot.Interval) ([]timeslot.Interval, error) {
	return f.intervals, nil
}

type fakeBusy struct {
	intervals []timeslot.Interval
}

func (f *fakeBusy) BusyIntervals(_ context.Context, _ uuid.UUID, _ timeslot.Interval) []timeslot.Interval {
	return f.intervals
}

type fakeCache struct {
	cached *queries.MonthAvailability
	sets   int
}

func (f *fakeCache) GetMonth(_ context.Context, _ uuid.UUID, _ int, _ time.Month) (*queries.MonthAvailability, bool) {
	if f.cached != nil {
		return f.cached, true
	}
	return nil, false
}

func (f *fakeCache) SetMonth(_ context.Context, _ uuid.UUID, rollup *queries.MonthAvailability) {
	f.cached = rollup
	f.sets++
}

type availabilityFixture struct {
	offerings *fakeOfferings
	blocked   *fakeBlocked
	busy      *fakeBusy
	cache     *fakeCache
	clock     *clock.MockClock
	q         queries.AvailabilityQueries
}

// Sunday evening before a March whose 2nd is a Monday.
var availNow = time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)

func newAvailabilityFixture(t *testing.T, off *offering.Offering) *availabilityFixture {
	t.Helper()
	f := &availabilityFixture{
		offerings: &fakeOfferings{off: off},
		blocked:   &fakeBlocked{},
		busy:      &fakeBusy{},
		cache:     &fakeCache{},
		clock:     clock.NewMockClock(availNow),
	}
	f.q = queries.NewAvailabilityQueries(
		f.offerings, f.blocked, f.busy, f.cache, f.clock,
		config.BookingConfig{MinLeadTime: time.Hour, DefaultBuffer: 15 * time.Minute},
	)
	return f
}

func mustOffering(t *testing.T, b *builder.OfferingBuilder) *offering.Offering {
	t.Helper()
	off, err := b.BuildDomain()
	require.NoError(t, err)
	return off
}

func dayOf(rollup *queries.MonthAvailability, date string) queries.DayRollup {
	for _, d := range rollup.Days {
		if d.Date == date {
			return d
		}
	}
	return queries.DayRollup{}
}

func TestMonth(t *testing.T) {
	ctx := context.Background()

	t.Run("weekday rollup counts half-hour slots", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))

		rollup, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		require.NoError(t, err)
		require.Len(t, rollup.Days, 31)

		monday := dayOf(rollup, "2026-03-02")
		assert.True(t, monday.Available)
		assert.Equal(t, 16, monday.SlotCount) // 09:00-17:00 in 30 minute slots

		sunday := dayOf(rollup, "2026-03-01")
		assert.False(t, sunday.Available)
		assert.Equal(t, queries.ReasonNoServiceHours, sunday.Reason)
	})

	t.Run("committed bookings shrink the count", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		// Blocked 09:45-10:45 swallows the 10:00 and 10:30 slots and the
		// 09:30 slot by overlap.
		f.blocked.intervals = []timeslot.Interval{
			{Start: day.Add(9*time.Hour + 45*time.Minute), End: day.Add(10*time.Hour + 45*time.Minute)},
		}

		rollup, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		require.NoError(t, err)
		assert.Equal(t, 13, dayOf(rollup, "2026-03-02").SlotCount)
	})

	t.Run("fully booked day", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		f.blocked.intervals = []timeslot.Interval{
			{Start: day.Add(8 * time.Hour), End: day.Add(18 * time.Hour)},
		}

		rollup, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		require.NoError(t, err)
		monday := dayOf(rollup, "2026-03-02")
		assert.False(t, monday.Available)
		assert.Equal(t, queries.ReasonFullyBooked, monday.Reason)
	})

	t.Run("calendar conflict day", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		f.busy.intervals = []timeslot.Interval{
			{Start: day.Add(8 * time.Hour), End: day.Add(18 * time.Hour)},
		}

		rollup, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		require.NoError(t, err)
		monday := dayOf(rollup, "2026-03-02")
		assert.False(t, monday.Available)
		assert.Equal(t, queries.ReasonCalendarConflict, monday.Reason)
	})

	t.Run("past days roll up as past cutoff", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))
		// Mid-March: the 2nd lies fully before now+lead.
		f.clock.Set(time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC))

		rollup, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		require.NoError(t, err)
		monday := dayOf(rollup, "2026-03-02")
		assert.False(t, monday.Available)
		assert.Equal(t, queries.ReasonPastCutoff, monday.Reason)
	})

	t.Run("cache hit skips the rebuild", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))
		cached := &queries.MonthAvailability{Year: 2026, Month: time.March}
		f.cache.cached = cached

		rollup, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		require.NoError(t, err)
		assert.Same(t, cached, rollup)
		assert.Zero(t, f.cache.sets)
	})

	t.Run("rollup is written through the cache", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))

		_, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		require.NoError(t, err)
		assert.Equal(t, 1, f.cache.sets)
	})

	t.Run("unknown offering", func(t *testing.T) {
		f := newAvailabilityFixture(t, nil)

		_, err := f.q.Month(ctx, uuid.New(), 2026, time.March)
		assert.ErrorIs(t, err, errs.ErrOfferingNotFound)
	})
}

func TestDay(t *testing.T) {
	ctx := context.Background()

	t.Run("slots carry per-slot reasons", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		f.blocked.intervals = []timeslot.Interval{
			{Start: day.Add(9*time.Hour + 45*time.Minute), End: day.Add(10*time.Hour + 45*time.Minute)},
		}

		got, err := f.q.Day(ctx, uuid.New(), "2026-03-02")
		require.NoError(t, err)
		require.Len(t, got.Slots, 16)

		bySlot := map[string]queries.SlotView{}
		for _, s := range got.Slots {
			bySlot[s.StartAt.Format("15:04")] = s
		}

		assert.True(t, bySlot["09:00"].Available)
		assert.Equal(t, queries.ReasonBooked, bySlot["09:30"].Reason)
		assert.Equal(t, queries.ReasonBooked, bySlot["10:00"].Reason)
		assert.Equal(t, queries.ReasonBooked, bySlot["10:30"].Reason)
		assert.True(t, bySlot["11:00"].Available)
	})

	t.Run("slots before the lead cutoff are closed", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))
		f.clock.Set(time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC))

		got, err := f.q.Day(ctx, uuid.New(), "2026-03-02")
		require.NoError(t, err)

		// Cutoff is 10:15: the 09:00, 09:30 and 10:00 slots are gone.
		assert.Equal(t, queries.ReasonPastCutoff, got.Slots[0].Reason)
		assert.Equal(t, queries.ReasonPastCutoff, got.Slots[2].Reason)
		assert.True(t, got.Slots[3].Available)
	})

	t.Run("day without service hours has no slots", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))

		got, err := f.q.Day(ctx, uuid.New(), "2026-03-01")
		require.NoError(t, err)
		assert.Empty(t, got.Slots)
	})

	t.Run("bad date format", func(t *testing.T) {
		f := newAvailabilityFixture(t, mustOffering(t, builder.NewOfferingBuilder()))

		_, err := f.q.Day(ctx, uuid.New(), "03/02/2026")
		assert.ErrorIs(t, err, errs.ErrInvalidTimeSlot)
	})
}
