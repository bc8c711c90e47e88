//go:build unit || e2e

package builder

import (
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/pkg/clock"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	OfferingID uuid.UUID
	ProviderID uuid.UUID
	CustomerID uuid.UUID
	StartAt    time.Time
	Duration   time.Duration
	Buffer     time.Duration
	PriceCents int64
	Now        time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) // a Monday
	return &BookingBuilder{
		OfferingID: uuid.New(),
		ProviderID: uuid.New(),
		CustomerID: uuid.New(),
		StartAt:    now.Add(2 * time.Hour),
		Duration:   30 * time.Minute,
		Buffer:     15 * time.Minute,
		PriceCents: 5000,
		Now:        now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithFree() *BookingBuilder {
	b.PriceCents = 0
	return b
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	services := &booking.Services{Clock: clock.NewMockClock(b.Now)}
	return booking.NewBooking(services, booking.OfferingSpec{
		ID:         b.OfferingID,
		ProviderID: b.ProviderID,
		Duration:   b.Duration,
		Buffer:     b.Buffer,
		PriceCents: b.PriceCents,
	}, b.CustomerID, b.StartAt)
}

// BuildWithStatus reconstructs a persisted booking in the given state.
func (b *BookingBuilder) BuildWithStatus(status booking.Status, version int64) *booking.Booking {
	return booking.Reconstruct(
		uuid.New(), b.OfferingID, b.ProviderID, b.CustomerID,
		b.StartAt, b.Duration, b.Buffer, status, false, version,
		b.Now, b.Now,
	)
}
