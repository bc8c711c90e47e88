package booking

import (
	"errors"
	"time"

	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrNegativeBuffer  = errors.New("buffer cannot be negative")
	ErrStartInPast     = errors.New("start time cannot be in the past")
)

type Booking struct {
	id         uuid.UUID
	offeringID uuid.UUID
	providerID uuid.UUID
	customerID uuid.UUID
	startAt    time.Time
	duration   time.Duration
	buffer     time.Duration
	status     Status
	auto       bool
	version    int64
	createdAt  time.Time
	updatedAt  time.Time
}

type OfferingSpec struct {
	ID         uuid.UUID
	ProviderID uuid.UUID
	Duration   time.Duration
	Buffer     time.Duration
	PriceCents int64
}

type Services struct {
	Clock clock.Clock
}

// NewBooking creates a booking in its initial state: pending for free
// offerings, pending_payment when funds must be escrowed first.
func NewBooking(services *Services, off OfferingSpec, customerID uuid.UUID, startAt time.Time) (*Booking, error) {
	if off.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if off.Buffer < 0 {
		return nil, ErrNegativeBuffer
	}
	now := services.Clock.Now()
	if startAt.Before(now) {
		return nil, ErrStartInPast
	}

	status := StatusPending
	if off.PriceCents > 0 {
		status = StatusPendingPayment
	}

	return &Booking{
		id:         uuid.New(),
		offeringID: off.ID,
		providerID: off.ProviderID,
		customerID: customerID,
		startAt:    startAt.UTC(),
		duration:   off.Duration,
		buffer:     off.Buffer,
		status:     status,
		version:    1,
	}, nil
}

func Reconstruct(
	id, offeringID, providerID, customerID uuid.UUID,
	startAt time.Time,
	duration, buffer time.Duration,
	status Status,
	auto bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		offeringID: offeringID,
		providerID: providerID,
		customerID: customerID,
		startAt:    startAt,
		duration:   duration,
		buffer:     buffer,
		status:     status,
		auto:       auto,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// TransitionRecord is one immutable entry of the booking's status history.
type TransitionRecord struct {
	BookingID  uuid.UUID
	From       Status
	To         Status
	Actor      Actor
	OccurredAt time.Time
	// EventID carries the ledger transaction reference for event-driven
	// transitions, nil otherwise.
	EventID *string
}

// ApplyTransition validates and applies a status change. A request targeting
// the current status is a no-op and returns (nil, nil) so at-least-once
// callers stay idempotent. On success the version is incremented and the
// history record to append is returned.
func (b *Booking) ApplyTransition(target Status, actor Actor, funded bool, at time.Time, eventID *string) (*TransitionRecord, error) {
	if !target.IsValid() {
		return nil, ErrUnknownStatus
	}
	if b.status == target {
		return nil, nil
	}
	if err := AuthorizeTransition(b.status, target, actor, funded); err != nil {
		return nil, err
	}

	rec := &TransitionRecord{
		BookingID:  b.id,
		From:       b.status,
		To:         target,
		Actor:      actor,
		OccurredAt: at,
		EventID:    eventID,
	}

	b.status = target
	b.auto = actor.Role == RolePlatform || actor.Role == RoleLedger
	b.version++
	b.updatedAt = at
	return rec, nil
}

func (b *Booking) EndAt() time.Time {
	return b.startAt.Add(b.duration)
}

// Slot is the occupied interval without buffers.
func (b *Booking) Slot() timeslot.Interval {
	return timeslot.Interval{Start: b.startAt, End: b.EndAt()}
}

// BlockedWindow is the slot expanded by the idle buffer on both sides; the
// availability engine subtracts this, not the raw slot.
func (b *Booking) BlockedWindow() timeslot.Interval {
	return b.Slot().Expand(b.buffer, b.buffer)
}

// DueForStart reports whether the scheduler should move confirmed→in_progress.
func (b *Booking) DueForStart(now time.Time) bool {
	return b.status == StatusConfirmed && !now.Before(b.startAt)
}

// DueForCompletion reports whether the scheduler should move
// in_progress→completed: the grace period after the scheduled end has elapsed.
func (b *Booking) DueForCompletion(now time.Time, grace time.Duration) bool {
	return b.status == StatusInProgress && !now.Before(b.EndAt().Add(grace))
}

func (b *Booking) ID() uuid.UUID          { return b.id }
func (b *Booking) OfferingID() uuid.UUID  { return b.offeringID }
func (b *Booking) ProviderID() uuid.UUID  { return b.providerID }
func (b *Booking) CustomerID() uuid.UUID  { return b.customerID }
func (b *Booking) StartAt() time.Time     { return b.startAt }
func (b *Booking) Duration() time.Duration { return b.duration }
func (b *Booking) Buffer() time.Duration  { return b.buffer }
func (b *Booking) Status() Status         { return b.status }
func (b *Booking) Auto() bool             { return b.auto }
func (b *Booking) Version() int64         { return b.version }
func (b *Booking) CreatedAt() time.Time   { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time   { return b.updatedAt }
