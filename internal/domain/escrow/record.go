package escrow

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNone     Status = "none"
	StatusFunded   Status = "funded"
	StatusReleased Status = "released"
	StatusRefunded Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

// Record mirrors the ledger-side state of one booking's escrow. The external
// contract is the source of truth for funds; this row only reflects confirmed
// events and powers idempotent replay detection.
type Record struct {
	BookingID   uuid.UUID
	Status      Status
	AmountCents int64
	FeeBps      int32
	DepositTx   *string
	ReleaseTx   *string
	RefundTx    *string
	// LastEventID / LastEventSeq identify the newest ledger event already
	// applied; anything at or below LastEventSeq is a duplicate delivery.
	LastEventID  *string
	LastEventSeq int64
	UpdatedAt    time.Time
}

func NewRecord(bookingID uuid.UUID, amountCents int64, feeBps int32) *Record {
	return &Record{
		BookingID:   bookingID,
		Status:      StatusNone,
		AmountCents: amountCents,
		FeeBps:      feeBps,
	}
}

// Funded reports whether funds have ever reached the escrow: once true,
// the booking may only be cancelled through a ledger-confirmed refund.
func (r *Record) Funded() bool {
	return r.Status != StatusNone
}

// Seen reports whether the event sequence was already applied.
func (r *Record) Seen(seq int64) bool {
	return seq <= r.LastEventSeq
}

// PlatformFeeCents computes the platform's cut of the escrowed amount.
func (r *Record) PlatformFeeCents() int64 {
	return r.AmountCents * int64(r.FeeBps) / 10000
}
