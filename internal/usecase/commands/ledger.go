package commands

import (
	"context"
	"log/slog"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/events"
	"escrowbook/internal/pkg/clock"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// LedgerCommands resolves confirmed ledger events into booking transitions.
// All of Resolve runs in a single transaction so the escrow mirror, the
// booking state, the history record and the cursor move together.
type LedgerCommands interface {
	Resolve(ctx context.Context, consumer string, ev escrow.LedgerEvent) error
}

type ledgerUseCaseImpl struct {
	uow         shared.UnitOfWork
	publisher   EventPublisher
	invalidator AvailabilityInvalidator
	clock       clock.Clock
	logger      *slog.Logger
}

func NewLedgerUseCase(
	uow shared.UnitOfWork,
	publisher EventPublisher,
	invalidator AvailabilityInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) LedgerCommands {
	return &ledgerUseCaseImpl{
		uow:         uow,
		publisher:   publisher,
		invalidator: invalidator,
		clock:       clk,
		logger:      logger,
	}
}

func (u *ledgerUseCaseImpl) Resolve(ctx context.Context, consumer string, ev escrow.LedgerEvent) error {
	target, err := ev.ImpliedTarget()
	if err != nil {
		return errs.Mark(err, errs.ErrEventUnresolvable)
	}
	recordStatus, err := ev.ImpliedRecordStatus()
	if err != nil {
		return errs.Mark(err, errs.ErrEventUnresolvable)
	}

	var (
		change     *events.StatusChanged
		providerID uuid.UUID
		dropCache  bool
	)
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// The stream cursor is a restart high-water mark, never a dedup gate:
		// a requeued event can be redelivered below it after later events for
		// other bookings already landed. Replay detection is per booking.
		seen, err := tx.Cursor().Get(ctx, consumer)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if ev.Seq <= seen {
			u.logger.Debug("ledger event at or below the stream cursor",
				"booking_id", ev.BookingID, "seq", ev.Seq, "cursor", seen)
		}

		b, err := tx.Bookings().FindByIDForUpdate(ctx, ev.BookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(errs.Newf("ledger event for unknown booking %s", ev.BookingID), errs.ErrEventUnresolvable)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		providerID = b.ProviderID()

		mirror, err := tx.Escrow().FindByBooking(ctx, ev.BookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(errs.Newf("ledger event for booking %s without escrow record", ev.BookingID), errs.ErrEventUnresolvable)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if mirror.Seen(ev.Seq) {
			// Duplicate delivery: this booking already absorbed the event.
			return nil
		}

		if err := u.applyToMirror(ctx, tx, ev, recordStatus); err != nil {
			return err
		}

		previous := b.Status()
		expectedVersion := b.Version()
		eventID := ev.TxRef
		rec, err := b.ApplyTransition(target, booking.LedgerActor(), true, u.clock.Now(), &eventID)
		if err != nil {
			// The ledger is authoritative; an edge our lifecycle cannot
			// express means manual follow-up, not a requeue loop.
			return errs.Mark(err, errs.ErrEventUnresolvable)
		}
		if rec != nil {
			if err := tx.Bookings().UpdateStatus(ctx, ev.BookingID, target, true, expectedVersion, rec.OccurredAt); err != nil {
				if infra.IsKind(err, infra.KindStaleVersion) {
					return errs.ErrStaleVersion
				}
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			if err := tx.Bookings().AppendTransition(ctx, rec); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			change = &events.StatusChanged{
				BookingID:  ev.BookingID,
				Previous:   previous.String(),
				Next:       target.String(),
				ActorRole:  booking.RoleLedger.String(),
				OccurredAt: rec.OccurredAt,
			}
			dropCache = previous.IsCommitted() != target.IsCommitted()
		}

		if err := tx.Cursor().Advance(ctx, consumer, ev.Seq); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if change != nil {
		if dropCache {
			u.invalidator.InvalidateProvider(ctx, providerID)
		}
		if err := u.publisher.PublishStatusChanged(ctx, *change); err != nil {
			u.logger.Warn("failed to publish status event",
				"booking_id", change.BookingID, "next", change.Next, "error", err)
		}
	}
	return nil
}

func (u *ledgerUseCaseImpl) applyToMirror(ctx context.Context, tx shared.Tx, ev escrow.LedgerEvent, status escrow.Status) error {
	err := tx.Escrow().ApplyEvent(ctx, ev.BookingID, status, ev.TxRef, ev.Seq, u.clock.Now())
	if err == nil {
		return nil
	}
	if infra.IsKind(err, infra.KindStaleVersion) {
		// Mirror already past this event; the booking transition below is
		// still attempted and no-ops if also applied.
		u.logger.Debug("escrow event already mirrored", "booking_id", ev.BookingID, "seq", ev.Seq)
		return nil
	}
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(errs.Newf("ledger event for booking %s without escrow record", ev.BookingID), errs.ErrEventUnresolvable)
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}
