//go:build unit || e2e

package builder

import (
	"time"

	"escrowbook/internal/domain/offering"

	"github.com/google/uuid"
)

// OfferingBuilder defaults to a weekday nine-to-five offering with half-hour
// sessions and a fifteen minute buffer.
type OfferingBuilder struct {
	ProviderID uuid.UUID
	Title      string
	Duration   time.Duration
	Buffer     time.Duration
	PriceCents int64
	FeeBps     int32
	Timezone   string
	Schedule   offering.WeeklySchedule
	Exceptions []offering.Exception
}

func NewOfferingBuilder() *OfferingBuilder {
	var schedule offering.WeeklySchedule
	for wd := time.Monday; wd <= time.Friday; wd++ {
		schedule[wd] = offering.Window{Enabled: true, StartMin: 9 * 60, EndMin: 17 * 60}
	}
	return &OfferingBuilder{
		ProviderID: uuid.New(),
		Title:      "Consultation",
		Duration:   30 * time.Minute,
		Buffer:     15 * time.Minute,
		PriceCents: 5000,
		FeeBps:     1000,
		Timezone:   "UTC",
		Schedule:   schedule,
	}
}

func (b *OfferingBuilder) With(mutate func(*OfferingBuilder)) *OfferingBuilder {
	mutate(b)
	return b
}

func (b *OfferingBuilder) WithFree() *OfferingBuilder {
	b.PriceCents = 0
	return b
}

func (b *OfferingBuilder) WithTimezone(tz string) *OfferingBuilder {
	b.Timezone = tz
	return b
}

func (b *OfferingBuilder) WithException(ex offering.Exception) *OfferingBuilder {
	b.Exceptions = append(b.Exceptions, ex)
	return b
}

func (b *OfferingBuilder) BuildDomain() (*offering.Offering, error) {
	return offering.NewOffering(
		b.ProviderID, b.Title, b.Duration, b.Buffer,
		b.PriceCents, b.FeeBps, b.Timezone, b.Schedule, b.Exceptions,
	)
}
