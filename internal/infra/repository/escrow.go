package repository

import (
	"context"
	"errors"
	"time"

	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EscrowRepository struct {
	dbtx db.DBTX
}

func NewEscrowRepository(dbtx db.DBTX) *EscrowRepository {
	return &EscrowRepository{dbtx: dbtx}
}

func (r *EscrowRepository) Create(ctx context.Context, rec *escrow.Record) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO escrow_records (booking_id, status, amount_cents, fee_bps)
		VALUES ($1, $2, $3, $4)`,
		rec.BookingID, rec.Status.String(), rec.AmountCents, rec.FeeBps,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert escrow record", err)
	}
	return nil
}

func (r *EscrowRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Record, error) {
	return FindEscrowByBooking(ctx, r.dbtx, bookingID)
}

func (r *EscrowRepository) SetDepositTx(ctx context.Context, bookingID uuid.UUID, txRef string) error {
	_, err := r.dbtx.Exec(ctx, `
		UPDATE escrow_records SET deposit_tx = $1, updated_at = now()
		WHERE booking_id = $2`,
		txRef, bookingID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record deposit tx", err)
	}
	return nil
}

func (r *EscrowRepository) ApplyEvent(ctx context.Context, bookingID uuid.UUID, status escrow.Status, eventID string, seq int64, at time.Time) error {
	var txColumn string
	switch status {
	case escrow.StatusFunded:
		txColumn = "deposit_tx"
	case escrow.StatusReleased:
		txColumn = "release_tx"
	case escrow.StatusRefunded:
		txColumn = "refund_tx"
	default:
		return infra.WrapRepoErr("event does not map to an escrow status", nil, infra.KindDBFailure)
	}

	// last_event_seq guard keeps replays from moving the mirror backwards.
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE escrow_records
		SET status = $1, `+txColumn+` = $2, last_event_id = $2, last_event_seq = $3, updated_at = $4
		WHERE booking_id = $5 AND last_event_seq < $3`,
		status.String(), eventID, seq, at, bookingID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to apply escrow event", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.dbtx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM escrow_records WHERE booking_id = $1)`, bookingID,
		).Scan(&exists); err != nil {
			return infra.WrapRepoErr("failed to check escrow record", err)
		}
		if !exists {
			return infra.WrapRepoErr("escrow record not found", nil, infra.KindNotFound)
		}
		return infra.WrapRepoErr("escrow event already applied", nil, infra.KindStaleVersion)
	}
	return nil
}

func FindEscrowByBooking(ctx context.Context, dbtx db.DBTX, bookingID uuid.UUID) (*escrow.Record, error) {
	rec := &escrow.Record{}
	var status string
	err := dbtx.QueryRow(ctx, `
		SELECT booking_id, status, amount_cents, fee_bps, deposit_tx, release_tx, refund_tx, last_event_id, last_event_seq, updated_at
		FROM escrow_records WHERE booking_id = $1`, bookingID,
	).Scan(&rec.BookingID, &status, &rec.AmountCents, &rec.FeeBps,
		&rec.DepositTx, &rec.ReleaseTx, &rec.RefundTx,
		&rec.LastEventID, &rec.LastEventSeq, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("escrow record not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan escrow record", err)
	}
	rec.Status = escrow.Status(status)
	return rec, nil
}
