//go:build unit

package offering_test

import (
	"testing"
	"time"

	"escrowbook/internal/domain/offering"
	"escrowbook/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOffering(t *testing.T) {
	t.Run("default builder is valid", func(t *testing.T) {
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, off.Duration())
		assert.Equal(t, 15*time.Minute, off.Buffer())
		assert.False(t, off.IsFree())
	})

	cases := []struct {
		name   string
		mutate func(*builder.OfferingBuilder)
		errIs  error
	}{
		{
			name:   "zero duration",
			mutate: func(b *builder.OfferingBuilder) { b.Duration = 0 },
			errIs:  offering.ErrInvalidDuration,
		},
		{
			name:   "negative price",
			mutate: func(b *builder.OfferingBuilder) { b.PriceCents = -1 },
			errIs:  offering.ErrNegativePrice,
		},
		{
			name:   "fee above 100 percent",
			mutate: func(b *builder.OfferingBuilder) { b.FeeBps = 10001 },
			errIs:  offering.ErrInvalidFee,
		},
		{
			name:   "bogus timezone",
			mutate: func(b *builder.OfferingBuilder) { b.Timezone = "Mars/Olympus" },
			errIs:  offering.ErrInvalidTimezone,
		},
		{
			name: "window end past midnight",
			mutate: func(b *builder.OfferingBuilder) {
				b.Schedule[time.Monday] = offering.Window{Enabled: true, StartMin: 600, EndMin: 1500}
			},
			errIs: offering.ErrInvalidWindow,
		},
		{
			name: "inverted window",
			mutate: func(b *builder.OfferingBuilder) {
				b.Schedule[time.Monday] = offering.Window{Enabled: true, StartMin: 600, EndMin: 540}
			},
			errIs: offering.ErrInvalidWindow,
		},
		{
			name: "exception with bad date",
			mutate: func(b *builder.OfferingBuilder) {
				b.Exceptions = []offering.Exception{{Date: "03/15/2026", Enabled: false}}
			},
			errIs: offering.ErrInvalidExceptionDate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := builder.NewOfferingBuilder().With(tc.mutate).BuildDomain()
			assert.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestWindowsOn(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("enabled weekday yields the service window", func(t *testing.T) {
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)

		windows := off.WindowsOn(monday)
		require.Len(t, windows, 1)
		assert.Equal(t, monday.Add(9*time.Hour), windows[0].Start)
		assert.Equal(t, monday.Add(17*time.Hour), windows[0].End)
	})

	t.Run("disabled weekday yields nothing", func(t *testing.T) {
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)

		assert.Empty(t, off.WindowsOn(sunday))
	})

	t.Run("disabling exception overrides the weekday", func(t *testing.T) {
		off, err := builder.NewOfferingBuilder().
			WithException(offering.Exception{Date: "2026-03-02", Enabled: false, Reason: "holiday"}).
			BuildDomain()
		require.NoError(t, err)

		assert.Empty(t, off.WindowsOn(monday))
	})

	t.Run("overriding exception replaces the window", func(t *testing.T) {
		off, err := builder.NewOfferingBuilder().
			WithException(offering.Exception{Date: "2026-03-02", Enabled: true, StartMin: 13 * 60, EndMin: 15 * 60}).
			BuildDomain()
		require.NoError(t, err)

		windows := off.WindowsOn(monday)
		require.Len(t, windows, 1)
		assert.Equal(t, monday.Add(13*time.Hour), windows[0].Start)
		assert.Equal(t, monday.Add(15*time.Hour), windows[0].End)
	})

	t.Run("windows are resolved in the offering's timezone", func(t *testing.T) {
		off, err := builder.NewOfferingBuilder().WithTimezone("America/New_York").BuildDomain()
		require.NoError(t, err)

		ny, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		localMonday := time.Date(2026, 3, 2, 0, 0, 0, 0, ny)

		windows := off.WindowsOn(localMonday)
		require.Len(t, windows, 1)
		assert.Equal(t, localMonday.Add(9*time.Hour), windows[0].Start)
		assert.True(t, windows[0].Start.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, ny)))
	})
}

func TestWithSchedule(t *testing.T) {
	off, err := builder.NewOfferingBuilder().BuildDomain()
	require.NoError(t, err)

	var weekends offering.WeeklySchedule
	weekends[time.Saturday] = offering.Window{Enabled: true, StartMin: 10 * 60, EndMin: 14 * 60}
	weekends[time.Sunday] = offering.Window{Enabled: true, StartMin: 10 * 60, EndMin: 14 * 60}

	updated, err := off.WithSchedule(weekends, nil)
	require.NoError(t, err)

	// The original is untouched.
	assert.True(t, off.Schedule()[time.Monday].Enabled)
	assert.False(t, updated.Schedule()[time.Monday].Enabled)
	assert.True(t, updated.Schedule()[time.Saturday].Enabled)

	_, err = off.WithSchedule(offering.WeeklySchedule{
		{Enabled: true, StartMin: 100, EndMin: 50},
	}, nil)
	assert.ErrorIs(t, err, offering.ErrInvalidWindow)
}
