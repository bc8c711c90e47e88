package escrow

import (
	"errors"
	"time"

	"escrowbook/internal/domain/booking"

	"github.com/google/uuid"
)

var ErrUnknownEventKind = errors.New("unknown ledger event kind")

type EventKind string

const (
	EventFunded           EventKind = "Funded"
	EventServiceCompleted EventKind = "ServiceCompleted"
	EventBookingCancelled EventKind = "BookingCancelled"
)

// LedgerEvent is one confirmed on-chain outcome. Seq is the ledger's
// monotonically increasing sequence (block/log index), used for the durable
// cursor and per-booking ordering.
type LedgerEvent struct {
	Kind      EventKind
	BookingID uuid.UUID
	TxRef     string
	Seq       int64
	EmittedAt time.Time
}

// ImpliedTarget maps the event kind onto the booking state it confirms.
func (e LedgerEvent) ImpliedTarget() (booking.Status, error) {
	switch e.Kind {
	case EventFunded:
		return booking.StatusPaid, nil
	case EventServiceCompleted:
		return booking.StatusCompleted, nil
	case EventBookingCancelled:
		return booking.StatusCancelled, nil
	default:
		return "", ErrUnknownEventKind
	}
}

// ImpliedRecordStatus maps the event kind onto the escrow mirror status.
func (e LedgerEvent) ImpliedRecordStatus() (Status, error) {
	switch e.Kind {
	case EventFunded:
		return StatusFunded, nil
	case EventServiceCompleted:
		return StatusReleased, nil
	case EventBookingCancelled:
		return StatusRefunded, nil
	default:
		return "", ErrUnknownEventKind
	}
}

// PendingTx is the fire-and-forget handle returned by ledger calls; the
// authoritative outcome arrives later as a LedgerEvent.
type PendingTx struct {
	TxRef       string
	SubmittedAt time.Time
}
