package commands

import (
	"context"

	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra/events"
	"escrowbook/internal/usecase/queries"

	"github.com/google/uuid"
)

// EscrowGateway submits ledger transactions. Calls are fire-and-forget from
// the booking's point of view: the state machine only moves when the matching
// ledger event is consumed by the monitor.
type EscrowGateway interface {
	Deposit(ctx context.Context, bookingID uuid.UUID, amountCents int64, feeBps int32) (*escrow.PendingTx, error)
	Complete(ctx context.Context, bookingID uuid.UUID) (*escrow.PendingTx, error)
	EmergencyCancel(ctx context.Context, bookingID uuid.UUID) (*escrow.PendingTx, error)
}

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, ev events.StatusChanged) error
}

// AvailabilityInvalidator drops cached availability after a committed-status
// change. Best effort: the cache reads through on miss.
type AvailabilityInvalidator interface {
	InvalidateProvider(ctx context.Context, providerID uuid.UUID)
}

// BusyIntervalSource is the external calendar lookup used for the advisory
// conflict check at creation time.
type BusyIntervalSource interface {
	BusyIntervals(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) []timeslot.Interval
}

// BookingViews is the read-after-write surface for command responses.
type BookingViews interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error)
}
