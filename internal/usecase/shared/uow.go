package shared

import (
	"context"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/domain/offering"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry on
	// serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: validation reads outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Escrow() EscrowRepository
	Offerings() OfferingRepository
	Cursor() CursorRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	OfferingByID(ctx context.Context, id uuid.UUID) (*offering.Offering, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	EscrowByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Record, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	// FindByIDForUpdate takes a row lock so a transition and a concurrent
	// sweep serialize on the same booking.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// UpdateStatus applies the optimistic lock: zero rows affected surfaces
	// as KindStaleVersion.
	UpdateStatus(ctx context.Context, id uuid.UUID, to booking.Status, auto bool, expectedVersion int64, at time.Time) error
	AppendTransition(ctx context.Context, rec *booking.TransitionRecord) error
	// CommittedWindows returns buffer-expanded blocked windows of committed
	// bookings for the provider inside the range. Run inside the creation
	// transaction this is the commit-time recheck read.
	CommittedWindows(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) ([]timeslot.Interval, error)
}

type EscrowRepository interface {
	Create(ctx context.Context, rec *escrow.Record) error
	FindByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Record, error)
	SetDepositTx(ctx context.Context, bookingID uuid.UUID, txRef string) error
	// ApplyEvent advances the mirror to the event's implied status and
	// records the event id/seq for replay detection.
	ApplyEvent(ctx context.Context, bookingID uuid.UUID, status escrow.Status, eventID string, seq int64, at time.Time) error
}

type OfferingRepository interface {
	Create(ctx context.Context, off *offering.Offering) error
	ReplaceSchedule(ctx context.Context, off *offering.Offering) error
}

type CursorRepository interface {
	// Get returns the last processed ledger sequence for the consumer,
	// zero when the consumer has never run.
	Get(ctx context.Context, consumer string) (int64, error)
	Advance(ctx context.Context, consumer string, seq int64) error
}
