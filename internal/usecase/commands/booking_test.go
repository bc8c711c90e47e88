//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra"
	"escrowbook/internal/pkg/clock"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/commands"
	"escrowbook/internal/usecase/queries"
	"escrowbook/tests/common/builder"
	"escrowbook/tests/common/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type bookingFixture struct {
	uow         *fakeUoW
	views       *mock.MockBookingViews
	gateway     *mock.MockEscrowGateway
	publisher   *mock.MockEventPublisher
	invalidator *mock.MockAvailabilityInvalidator
	busy        *mock.MockBusyIntervalSource
	clock       *clock.MockClock
	uc          commands.BookingCommands
}

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) // Monday

func newBookingFixture(t *testing.T, escrowCfg config.EscrowConfig) *bookingFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &bookingFixture{
		uow:         newFakeUoW(),
		views:       mock.NewMockBookingViews(ctrl),
		gateway:     mock.NewMockEscrowGateway(ctrl),
		publisher:   mock.NewMockEventPublisher(ctrl),
		invalidator: mock.NewMockAvailabilityInvalidator(ctrl),
		busy:        mock.NewMockBusyIntervalSource(ctrl),
		clock:       clock.NewMockClock(testNow),
	}
	f.uc = commands.NewBookingUseCase(
		f.uow, f.views, f.gateway, f.publisher, f.invalidator, f.busy, f.clock,
		config.BookingConfig{
			TickInterval:   time.Minute,
			GracePeriod:    15 * time.Minute,
			MinLeadTime:    time.Hour,
			DefaultBuffer:  15 * time.Minute,
			SweepBatchSize: 100,
		},
		escrowCfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	startAt := testNow.Add(2 * time.Hour) // 10:00, inside the weekday window

	t.Run("priced booking escrows and submits deposit", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		f.busy.EXPECT().BusyIntervals(gomock.Any(), off.ProviderID(), gomock.Any()).Return(nil)
		f.invalidator.EXPECT().InvalidateProvider(gomock.Any(), off.ProviderID())
		f.gateway.EXPECT().Deposit(gomock.Any(), gomock.Any(), int64(5000), int32(1000)).
			Return(&escrow.PendingTx{TxRef: "0xdeadbeef"}, nil)
		f.views.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(&queries.BookingView{}, nil)

		result, err := f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    startAt,
		})
		require.NoError(t, err)
		require.NotNil(t, result.DepositTxRef)
		assert.Equal(t, "0xdeadbeef", *result.DepositTxRef)

		require.Len(t, f.uow.tx.bookings.created, 1)
		created := f.uow.tx.bookings.created[0]
		assert.Equal(t, booking.StatusPendingPayment, created.Status())

		require.Len(t, f.uow.tx.escrow.created, 1)
		assert.Equal(t, int64(5000), f.uow.tx.escrow.created[0].AmountCents)
		assert.Equal(t, []string{"0xdeadbeef"}, f.uow.tx.escrow.depositTxs)
	})

	t.Run("free booking skips escrow entirely", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().WithFree().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		f.busy.EXPECT().BusyIntervals(gomock.Any(), off.ProviderID(), gomock.Any()).Return(nil)
		f.views.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(&queries.BookingView{}, nil)

		result, err := f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    startAt,
		})
		require.NoError(t, err)
		assert.Nil(t, result.DepositTxRef)

		require.Len(t, f.uow.tx.bookings.created, 1)
		assert.Equal(t, booking.StatusPending, f.uow.tx.bookings.created[0].Status())
		assert.Empty(t, f.uow.tx.escrow.created)
	})

	t.Run("deposit failure leaves booking awaiting funding", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		f.busy.EXPECT().BusyIntervals(gomock.Any(), off.ProviderID(), gomock.Any()).Return(nil)
		f.invalidator.EXPECT().InvalidateProvider(gomock.Any(), off.ProviderID())
		f.gateway.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrChainCallFailed)
		f.views.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(&queries.BookingView{}, nil)

		result, err := f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    startAt,
		})
		require.NoError(t, err)
		assert.Nil(t, result.DepositTxRef)
		assert.Len(t, f.uow.tx.bookings.created, 1)
	})

	t.Run("unknown offering", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})

		_, err := f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: uuid.New(),
			CustomerID: uuid.New(),
			StartAt:    startAt,
		})
		assert.ErrorIs(t, err, errs.ErrOfferingNotFound)
	})

	t.Run("insufficient lead time", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		_, err = f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    testNow.Add(30 * time.Minute),
		})
		assert.ErrorIs(t, err, commands.ErrInsufficientLeadTime)
	})

	t.Run("outside service hours", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		_, err = f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    testNow.Add(11 * time.Hour), // 19:00, window closes at 17:00
		})
		assert.ErrorIs(t, err, errs.ErrInvalidTimeSlot)
	})

	t.Run("external calendar conflict", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		f.busy.EXPECT().BusyIntervals(gomock.Any(), off.ProviderID(), gomock.Any()).
			Return([]timeslot.Interval{{Start: startAt, End: startAt.Add(time.Hour)}})

		_, err = f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    startAt,
		})
		assert.ErrorIs(t, err, errs.ErrSlotUnavailable)
		assert.Empty(t, f.uow.tx.bookings.created)
	})

	t.Run("commit-time recheck rejects taken slot", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		f.busy.EXPECT().BusyIntervals(gomock.Any(), off.ProviderID(), gomock.Any()).Return(nil)
		// Another committed booking blocks 09:45-10:45 (buffers included).
		f.uow.tx.bookings.committed = []timeslot.Interval{
			{Start: startAt.Add(-15 * time.Minute), End: startAt.Add(45 * time.Minute)},
		}

		_, err = f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    startAt,
		})
		assert.ErrorIs(t, err, errs.ErrSlotUnavailable)
		assert.Empty(t, f.uow.tx.bookings.created)
	})

	t.Run("exclusion constraint race maps to slot unavailable", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		off, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		f.uow.reads.offering = off

		f.busy.EXPECT().BusyIntervals(gomock.Any(), off.ProviderID(), gomock.Any()).Return(nil)
		f.uow.tx.bookings.createErr = infra.WrapRepoErr("slot already committed", nil, infra.KindConflict)

		_, err = f.uc.Create(ctx, commands.CreateBookingInput{
			OfferingID: off.ID(),
			CustomerID: uuid.New(),
			StartAt:    startAt,
		})
		assert.ErrorIs(t, err, errs.ErrSlotUnavailable)
	})
}

func ownerProvider(b *booking.Booking) booking.Actor {
	return booking.Actor{ID: b.ProviderID(), Role: booking.RoleProvider}
}

func TestTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("provider confirms pending booking", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPending, 3)
		f.uow.tx.bookings.findForUpdate = b
		provider := ownerProvider(b)

		f.publisher.EXPECT().PublishStatusChanged(gomock.Any(), gomock.Any()).Return(nil)
		f.invalidator.EXPECT().InvalidateProvider(gomock.Any(), b.ProviderID())
		f.views.EXPECT().FindByID(gomock.Any(), b.ID()).Return(&queries.BookingView{ID: b.ID()}, nil)

		view, err := f.uc.Transition(ctx, b.ID(), booking.StatusConfirmed, provider)
		require.NoError(t, err)
		assert.Equal(t, b.ID(), view.ID)

		require.Len(t, f.uow.tx.bookings.updates, 1)
		update := f.uow.tx.bookings.updates[0]
		assert.Equal(t, booking.StatusConfirmed, update.To)
		assert.Equal(t, int64(3), update.ExpectedVersion)
		assert.False(t, update.Auto)

		require.Len(t, f.uow.tx.bookings.transitions, 1)
		assert.Equal(t, booking.StatusPending, f.uow.tx.bookings.transitions[0].From)
	})

	t.Run("idempotent no-op skips persistence and events", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusConfirmed, 2)
		f.uow.tx.bookings.findForUpdate = b

		f.views.EXPECT().FindByID(gomock.Any(), b.ID()).Return(&queries.BookingView{ID: b.ID()}, nil)

		_, err := f.uc.Transition(ctx, b.ID(), booking.StatusConfirmed, ownerProvider(b))
		require.NoError(t, err)
		assert.Empty(t, f.uow.tx.bookings.updates)
		assert.Empty(t, f.uow.tx.bookings.transitions)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		provider := booking.Actor{ID: uuid.New(), Role: booking.RoleProvider}

		_, err := f.uc.Transition(ctx, uuid.New(), booking.StatusConfirmed, provider)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})

	t.Run("stale version surfaces as its own error", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPending, 1)
		f.uow.tx.bookings.findForUpdate = b
		f.uow.tx.bookings.updateErr = infra.WrapRepoErr("version moved", nil, infra.KindStaleVersion)

		_, err := f.uc.Transition(ctx, b.ID(), booking.StatusConfirmed, ownerProvider(b))
		assert.ErrorIs(t, err, errs.ErrStaleVersion)
	})

	t.Run("denied actor maps to insufficient permission", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPending, 1)
		f.uow.tx.bookings.findForUpdate = b
		customer := booking.Actor{ID: b.CustomerID(), Role: booking.RoleCustomer}

		_, err := f.uc.Transition(ctx, b.ID(), booking.StatusConfirmed, customer)
		assert.ErrorIs(t, err, errs.ErrInsufficientPermission)
	})

	t.Run("stranger customer cannot cancel another's booking", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPending, 1)
		f.uow.tx.bookings.findForUpdate = b
		stranger := booking.Actor{ID: uuid.New(), Role: booking.RoleCustomer}

		_, err := f.uc.Transition(ctx, b.ID(), booking.StatusCancelled, stranger)
		assert.ErrorIs(t, err, errs.ErrInsufficientPermission)
		assert.Empty(t, f.uow.tx.bookings.updates)
	})

	t.Run("provider of another offering cannot confirm", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPending, 1)
		f.uow.tx.bookings.findForUpdate = b
		stranger := booking.Actor{ID: uuid.New(), Role: booking.RoleProvider}

		_, err := f.uc.Transition(ctx, b.ID(), booking.StatusConfirmed, stranger)
		assert.ErrorIs(t, err, errs.ErrInsufficientPermission)
		assert.Empty(t, f.uow.tx.bookings.updates)
	})

	t.Run("funded cancellation by a human is refused", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusConfirmed, 1)
		f.uow.tx.bookings.findForUpdate = b
		f.uow.tx.escrow.rec = &escrow.Record{BookingID: b.ID(), Status: escrow.StatusFunded}

		_, err := f.uc.Transition(ctx, b.ID(), booking.StatusCancelled, ownerProvider(b))
		assert.ErrorIs(t, err, errs.ErrInsufficientPermission)
		assert.Empty(t, f.uow.tx.bookings.updates)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("unfunded booking cancels directly", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPending, 1)
		customer := booking.Actor{ID: b.CustomerID(), Role: booking.RoleCustomer}
		f.uow.reads.booking = b
		f.uow.tx.bookings.findForUpdate = b

		f.publisher.EXPECT().PublishStatusChanged(gomock.Any(), gomock.Any()).Return(nil)
		f.views.EXPECT().FindByID(gomock.Any(), b.ID()).Return(&queries.BookingView{ID: b.ID()}, nil)

		_, err := f.uc.Cancel(ctx, b.ID(), customer)
		require.NoError(t, err)

		require.Len(t, f.uow.tx.bookings.updates, 1)
		assert.Equal(t, booking.StatusCancelled, f.uow.tx.bookings.updates[0].To)
	})

	t.Run("funded booking routes through the ledger", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusConfirmed, 1)
		customer := booking.Actor{ID: b.CustomerID(), Role: booking.RoleCustomer}
		f.uow.reads.booking = b
		f.uow.reads.escrow = &escrow.Record{BookingID: b.ID(), Status: escrow.StatusFunded}

		f.gateway.EXPECT().EmergencyCancel(gomock.Any(), b.ID()).
			Return(&escrow.PendingTx{TxRef: "0xcancel"}, nil)
		f.views.EXPECT().FindByID(gomock.Any(), b.ID()).Return(&queries.BookingView{ID: b.ID()}, nil)

		_, err := f.uc.Cancel(ctx, b.ID(), customer)
		require.NoError(t, err)

		// State stays until the BookingCancelled event lands.
		assert.Empty(t, f.uow.tx.bookings.updates)
	})

	t.Run("funded terminal booking cannot be cancelled", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusCompleted, 1)
		f.uow.reads.booking = b
		f.uow.reads.escrow = &escrow.Record{BookingID: b.ID(), Status: escrow.StatusReleased}

		_, err := f.uc.Cancel(ctx, b.ID(), booking.PlatformActor())
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("other customers cannot cancel", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPending, 1)
		f.uow.reads.booking = b
		stranger := booking.Actor{ID: uuid.New(), Role: booking.RoleCustomer}

		_, err := f.uc.Cancel(ctx, b.ID(), stranger)
		assert.ErrorIs(t, err, commands.ErrNotBookingCustomer)
	})
}

func TestFund(t *testing.T) {
	ctx := context.Background()

	t.Run("resubmits the deposit", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusPendingPayment, 1)
		customer := booking.Actor{ID: b.CustomerID(), Role: booking.RoleCustomer}
		f.uow.reads.booking = b
		f.uow.reads.escrow = &escrow.Record{BookingID: b.ID(), AmountCents: 5000, FeeBps: 1000}

		f.gateway.EXPECT().Deposit(gomock.Any(), b.ID(), int64(5000), int32(1000)).
			Return(&escrow.PendingTx{TxRef: "0xretry"}, nil)

		tx, err := f.uc.Fund(ctx, b.ID(), customer)
		require.NoError(t, err)
		assert.Equal(t, "0xretry", tx.TxRef)
		assert.Equal(t, []string{"0xretry"}, f.uow.tx.escrow.depositTxs)
	})

	t.Run("only pending_payment bookings are fundable", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusConfirmed, 1)
		f.uow.reads.booking = b

		_, err := f.uc.Fund(ctx, b.ID(), booking.PlatformActor())
		assert.ErrorIs(t, err, commands.ErrBookingNotFundable)
	})
}

func TestRequestCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("customer may release anytime while in progress", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusInProgress, 1)
		customer := booking.Actor{ID: b.CustomerID(), Role: booking.RoleCustomer}
		f.uow.reads.booking = b

		f.gateway.EXPECT().Complete(gomock.Any(), b.ID()).
			Return(&escrow.PendingTx{TxRef: "0xrelease"}, nil)

		tx, err := f.uc.RequestCompletion(ctx, b.ID(), customer)
		require.NoError(t, err)
		assert.Equal(t, "0xrelease", tx.TxRef)
	})

	t.Run("platform release is disabled by default", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{PlatformCompletion: false})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusInProgress, 1)
		f.uow.reads.booking = b

		_, err := f.uc.RequestCompletion(ctx, b.ID(), booking.PlatformActor())
		assert.ErrorIs(t, err, commands.ErrCompletionNotAllowed)
	})

	t.Run("enabled platform release opens at the scheduled end", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{PlatformCompletion: true})
		bb := builder.NewBookingBuilder()
		b := bb.BuildWithStatus(booking.StatusInProgress, 1)
		f.uow.reads.booking = b

		// The service has not ended yet.
		f.clock.Set(b.EndAt().Add(-10 * time.Minute))
		_, err := f.uc.RequestCompletion(ctx, b.ID(), booking.PlatformActor())
		assert.ErrorIs(t, err, commands.ErrCompletionNotAllowed)

		// Inside the grace window following the end.
		f.clock.Set(b.EndAt().Add(10 * time.Minute))
		f.gateway.EXPECT().Complete(gomock.Any(), b.ID()).
			Return(&escrow.PendingTx{TxRef: "0xauto"}, nil)
		_, err = f.uc.RequestCompletion(ctx, b.ID(), booking.PlatformActor())
		assert.NoError(t, err)
	})

	t.Run("not in progress", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusConfirmed, 1)
		f.uow.reads.booking = b
		customer := booking.Actor{ID: b.CustomerID(), Role: booking.RoleCustomer}

		_, err := f.uc.RequestCompletion(ctx, b.ID(), customer)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("providers cannot trigger release", func(t *testing.T) {
		f := newBookingFixture(t, config.EscrowConfig{})
		b := builder.NewBookingBuilder().BuildWithStatus(booking.StatusInProgress, 1)
		f.uow.reads.booking = b
		provider := booking.Actor{ID: b.ProviderID(), Role: booking.RoleProvider}

		_, err := f.uc.RequestCompletion(ctx, b.ID(), provider)
		assert.ErrorIs(t, err, commands.ErrCompletionNotAllowed)
	})
}
