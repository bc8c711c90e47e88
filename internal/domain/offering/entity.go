package offering

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration = errors.New("offering duration must be positive")
	ErrNegativePrice   = errors.New("offering price cannot be negative")
	ErrInvalidFee      = errors.New("platform fee must be between 0 and 10000 basis points")
	ErrInvalidTimezone = errors.New("unknown timezone")
)

type Offering struct {
	id         uuid.UUID
	providerID uuid.UUID
	title      string
	duration   time.Duration
	buffer     time.Duration
	priceCents int64
	feeBps     int32
	timezone   string
	schedule   WeeklySchedule
	exceptions []Exception
	createdAt  time.Time
	updatedAt  time.Time
}

func NewOffering(
	providerID uuid.UUID,
	title string,
	duration, buffer time.Duration,
	priceCents int64,
	feeBps int32,
	timezone string,
	schedule WeeklySchedule,
	exceptions []Exception,
) (*Offering, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if buffer < 0 {
		buffer = 0
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}
	if feeBps < 0 || feeBps > 10000 {
		return nil, ErrInvalidFee
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, ErrInvalidTimezone
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	for _, ex := range exceptions {
		if err := ex.Validate(); err != nil {
			return nil, err
		}
	}

	return &Offering{
		id:         uuid.New(),
		providerID: providerID,
		title:      title,
		duration:   duration,
		buffer:     buffer,
		priceCents: priceCents,
		feeBps:     feeBps,
		timezone:   timezone,
		schedule:   schedule,
		exceptions: exceptions,
	}, nil
}

func Reconstruct(
	id, providerID uuid.UUID,
	title string,
	duration, buffer time.Duration,
	priceCents int64,
	feeBps int32,
	timezone string,
	schedule WeeklySchedule,
	exceptions []Exception,
	createdAt, updatedAt time.Time,
) *Offering {
	return &Offering{
		id:         id,
		providerID: providerID,
		title:      title,
		duration:   duration,
		buffer:     buffer,
		priceCents: priceCents,
		feeBps:     feeBps,
		timezone:   timezone,
		schedule:   schedule,
		exceptions: exceptions,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// WithSchedule returns a copy carrying the new weekly windows and exceptions
// after validating them.
func (o *Offering) WithSchedule(schedule WeeklySchedule, exceptions []Exception) (*Offering, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	for _, ex := range exceptions {
		if err := ex.Validate(); err != nil {
			return nil, err
		}
	}
	updated := *o
	updated.schedule = schedule
	updated.exceptions = exceptions
	return &updated, nil
}

func (o *Offering) IsFree() bool {
	return o.priceCents == 0
}

// Location resolves the configured timezone. The constructor guarantees it
// loads, so failures here indicate corrupted stored data.
func (o *Offering) Location() *time.Location {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (o *Offering) ID() uuid.UUID            { return o.id }
func (o *Offering) ProviderID() uuid.UUID    { return o.providerID }
func (o *Offering) Title() string            { return o.title }
func (o *Offering) Duration() time.Duration  { return o.duration }
func (o *Offering) Buffer() time.Duration    { return o.buffer }
func (o *Offering) PriceCents() int64        { return o.priceCents }
func (o *Offering) FeeBps() int32            { return o.feeBps }
func (o *Offering) Timezone() string         { return o.timezone }
func (o *Offering) Schedule() WeeklySchedule { return o.schedule }
func (o *Offering) Exceptions() []Exception  { return o.exceptions }
func (o *Offering) CreatedAt() time.Time     { return o.createdAt }
func (o *Offering) UpdatedAt() time.Time     { return o.updatedAt }
