package commands

import (
	"context"
	"log/slog"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/domain/offering"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/events"
	"escrowbook/internal/pkg/clock"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/queries"
	"escrowbook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInsufficientLeadTime = errs.New("insufficient lead time")
	ErrNotBookingCustomer   = errs.New("actor is not the booking customer")
	ErrBookingNotFundable   = errs.New("booking is not awaiting payment")
	ErrCompletionNotAllowed = errs.New("completion not allowed for this actor")
)

type CreateBookingInput struct {
	OfferingID uuid.UUID
	CustomerID uuid.UUID
	StartAt    time.Time
}

type CreateBookingResult struct {
	Booking *queries.BookingView
	// DepositTxRef is set when the escrow deposit was submitted; nil for free
	// offerings and when the gateway call failed (retry via Fund).
	DepositTxRef *string
}

type BookingCommands interface {
	Create(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	// Fund resubmits the escrow deposit for a booking stuck in pending_payment.
	Fund(ctx context.Context, bookingID uuid.UUID, actor booking.Actor) (*escrow.PendingTx, error)
	// Transition applies a direct lifecycle change requested by an actor.
	Transition(ctx context.Context, bookingID uuid.UUID, target booking.Status, actor booking.Actor) (*queries.BookingView, error)
	// Cancel routes to a direct transition for unfunded bookings and to a
	// ledger emergency-cancel submission for funded ones.
	Cancel(ctx context.Context, bookingID uuid.UUID, actor booking.Actor) (*queries.BookingView, error)
	// RequestCompletion submits the escrow release for a funded in-progress
	// booking; the completed state lands when the ledger event arrives.
	RequestCompletion(ctx context.Context, bookingID uuid.UUID, actor booking.Actor) (*escrow.PendingTx, error)
}

type bookingUseCaseImpl struct {
	uow         shared.UnitOfWork
	views       BookingViews
	gateway     EscrowGateway
	publisher   EventPublisher
	invalidator AvailabilityInvalidator
	busy        BusyIntervalSource
	clock       clock.Clock
	bookingCfg  config.BookingConfig
	escrowCfg   config.EscrowConfig
	logger      *slog.Logger
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	views BookingViews,
	gateway EscrowGateway,
	publisher EventPublisher,
	invalidator AvailabilityInvalidator,
	busy BusyIntervalSource,
	clk clock.Clock,
	bookingCfg config.BookingConfig,
	escrowCfg config.EscrowConfig,
	logger *slog.Logger,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:         uow,
		views:       views,
		gateway:     gateway,
		publisher:   publisher,
		invalidator: invalidator,
		busy:        busy,
		clock:       clk,
		bookingCfg:  bookingCfg,
		escrowCfg:   escrowCfg,
		logger:      logger,
	}
}

func (u *bookingUseCaseImpl) Create(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	off, err := u.uow.CommandReads().OfferingByID(ctx, input.OfferingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOfferingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := u.clock.Now()
	if input.StartAt.Before(now.Add(u.bookingCfg.MinLeadTime)) {
		return nil, ErrInsufficientLeadTime
	}

	candidate := timeslot.Interval{Start: input.StartAt, End: input.StartAt.Add(off.Duration())}
	if !u.withinServiceHours(off, candidate) {
		return nil, errs.ErrInvalidTimeSlot
	}

	// Advisory external calendar check; the source degrades to no conflicts
	// on fetch failure.
	if _, conflict := timeslot.FirstConflict(candidate, u.busy.BusyIntervals(ctx, off.ProviderID(), candidate)); conflict {
		return nil, errs.ErrSlotUnavailable
	}

	entity, err := booking.NewBooking(&booking.Services{Clock: u.clock}, booking.OfferingSpec{
		ID:         off.ID(),
		ProviderID: off.ProviderID(),
		Duration:   off.Duration(),
		Buffer:     off.Buffer(),
		PriceCents: off.PriceCents(),
	}, input.CustomerID, input.StartAt)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidTimeSlot)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// Commit-time recheck against committed bookings; the exclusion
		// constraint backstops races this read cannot see.
		blocked, err := tx.Bookings().CommittedWindows(ctx, off.ProviderID(), candidate)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if _, conflict := timeslot.FirstConflict(candidate, blocked); conflict {
			return errs.ErrSlotUnavailable
		}

		if err := tx.Bookings().Create(ctx, entity); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.ErrSlotUnavailable
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !off.IsFree() {
			if err := tx.Escrow().Create(ctx, escrow.NewRecord(entity.ID(), off.PriceCents(), off.FeeBps())); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entity.Status().IsCommitted() {
		u.invalidator.InvalidateProvider(ctx, off.ProviderID())
	}

	result := &CreateBookingResult{}
	if !off.IsFree() {
		if tx, err := u.submitDeposit(ctx, entity.ID(), off.PriceCents(), off.FeeBps()); err != nil {
			u.logger.Warn("escrow deposit submission failed, booking awaits funding",
				"booking_id", entity.ID(), "error", err)
		} else {
			result.DepositTxRef = &tx.TxRef
		}
	}

	view, err := u.views.FindByID(ctx, entity.ID())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	result.Booking = view
	return result, nil
}

func (u *bookingUseCaseImpl) withinServiceHours(off *offering.Offering, candidate timeslot.Interval) bool {
	windows := off.WindowsOn(candidate.Start)
	endDay := candidate.End.In(off.Location())
	startDay := candidate.Start.In(off.Location())
	if endDay.YearDay() != startDay.YearDay() || endDay.Year() != startDay.Year() {
		windows = append(windows, off.WindowsOn(candidate.End)...)
	}
	return timeslot.Fits(candidate, windows, nil)
}

func (u *bookingUseCaseImpl) Fund(ctx context.Context, bookingID uuid.UUID, actor booking.Actor) (*escrow.PendingTx, error) {
	reads := u.uow.CommandReads()
	b, err := reads.BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if actor.Role == booking.RoleCustomer && actor.ID != b.CustomerID() {
		return nil, ErrNotBookingCustomer
	}
	if b.Status() != booking.StatusPendingPayment {
		return nil, ErrBookingNotFundable
	}

	rec, err := reads.EscrowByBooking(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return u.submitDeposit(ctx, bookingID, rec.AmountCents, rec.FeeBps)
}

func (u *bookingUseCaseImpl) submitDeposit(ctx context.Context, bookingID uuid.UUID, amountCents int64, feeBps int32) (*escrow.PendingTx, error) {
	tx, err := u.gateway.Deposit(ctx, bookingID, amountCents, feeBps)
	if err != nil {
		return nil, err
	}
	err = u.uow.Within(ctx, func(ctx context.Context, utx shared.Tx) error {
		return utx.Escrow().SetDepositTx(ctx, bookingID, tx.TxRef)
	})
	if err != nil {
		// The ledger call went through; the tx ref will be recovered from the
		// Funded event.
		u.logger.Warn("failed to record deposit tx ref", "booking_id", bookingID, "error", err)
	}
	return tx, nil
}

func (u *bookingUseCaseImpl) Transition(ctx context.Context, bookingID uuid.UUID, target booking.Status, actor booking.Actor) (*queries.BookingView, error) {
	var (
		change     *events.StatusChanged
		providerID uuid.UUID
		dropCache  bool
	)
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrBookingNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		providerID = b.ProviderID()

		// The edge policy checks the role; the actor must also be a party to
		// this booking. Platform and ledger act on any booking.
		switch actor.Role {
		case booking.RoleCustomer:
			if actor.ID != b.CustomerID() {
				return errs.ErrInsufficientPermission
			}
		case booking.RoleProvider:
			if actor.ID != b.ProviderID() {
				return errs.ErrInsufficientPermission
			}
		}

		funded := false
		if rec, err := tx.Escrow().FindByBooking(ctx, bookingID); err == nil {
			funded = rec.Funded()
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		previous := b.Status()
		expectedVersion := b.Version()
		rec, err := b.ApplyTransition(target, actor, funded, u.clock.Now(), nil)
		if err != nil {
			return markTransitionErr(err)
		}
		if rec == nil {
			// Idempotent no-op: already in the target state.
			return nil
		}

		if err := tx.Bookings().UpdateStatus(ctx, bookingID, target, b.Auto(), expectedVersion, rec.OccurredAt); err != nil {
			if infra.IsKind(err, infra.KindStaleVersion) {
				return errs.ErrStaleVersion
			}
			if infra.IsKind(err, infra.KindConflict) {
				return errs.ErrSlotUnavailable
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := tx.Bookings().AppendTransition(ctx, rec); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		change = &events.StatusChanged{
			BookingID:  bookingID,
			Previous:   previous.String(),
			Next:       target.String(),
			ActorRole:  actor.Role.String(),
			OccurredAt: rec.OccurredAt,
		}
		dropCache = previous.IsCommitted() != target.IsCommitted()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		u.afterTransition(ctx, *change, providerID, dropCache)
	}

	view, err := u.views.FindByID(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (u *bookingUseCaseImpl) afterTransition(ctx context.Context, change events.StatusChanged, providerID uuid.UUID, dropCache bool) {
	if dropCache {
		u.invalidator.InvalidateProvider(ctx, providerID)
	}
	if err := u.publisher.PublishStatusChanged(ctx, change); err != nil {
		u.logger.Warn("failed to publish status event",
			"booking_id", change.BookingID, "next", change.Next, "error", err)
	}
}

func (u *bookingUseCaseImpl) Cancel(ctx context.Context, bookingID uuid.UUID, actor booking.Actor) (*queries.BookingView, error) {
	reads := u.uow.CommandReads()
	b, err := reads.BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if actor.Role == booking.RoleCustomer && actor.ID != b.CustomerID() {
		return nil, ErrNotBookingCustomer
	}

	funded := false
	if rec, err := reads.EscrowByBooking(ctx, bookingID); err == nil {
		funded = rec.Funded()
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if !funded {
		return u.Transition(ctx, bookingID, booking.StatusCancelled, actor)
	}

	if b.Status().IsTerminal() {
		return nil, errs.Mark(booking.ErrTerminalState, errs.ErrInvalidTransition)
	}
	// Funds are locked: only a ledger-confirmed refund may cancel. Submit the
	// emergency cancel and leave the state untouched until the event arrives.
	if _, err := u.gateway.EmergencyCancel(ctx, bookingID); err != nil {
		return nil, err
	}
	view, err := u.views.FindByID(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (u *bookingUseCaseImpl) RequestCompletion(ctx context.Context, bookingID uuid.UUID, actor booking.Actor) (*escrow.PendingTx, error) {
	reads := u.uow.CommandReads()
	b, err := reads.BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if b.Status() != booking.StatusInProgress {
		return nil, errs.ErrInvalidTransition
	}

	switch actor.Role {
	case booking.RoleCustomer:
		if actor.ID != b.CustomerID() {
			return nil, ErrNotBookingCustomer
		}
	case booking.RolePlatform:
		// Platform-side release stays disabled unless explicitly turned on,
		// and then only once the scheduled end has passed. The sweep is the
		// caller and waits out the grace period before invoking it.
		if !u.escrowCfg.PlatformCompletion {
			return nil, ErrCompletionNotAllowed
		}
		if u.clock.Now().Before(b.EndAt()) {
			return nil, ErrCompletionNotAllowed
		}
	default:
		return nil, ErrCompletionNotAllowed
	}

	return u.gateway.Complete(ctx, bookingID)
}

func markTransitionErr(err error) error {
	switch {
	case errs.Is(err, booking.ErrActorNotAllowed), errs.Is(err, booking.ErrFundedDirectCancel):
		return errs.Mark(err, errs.ErrInsufficientPermission)
	default:
		return errs.Mark(err, errs.ErrInvalidTransition)
	}
}
