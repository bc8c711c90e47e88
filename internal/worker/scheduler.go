package worker

import (
	"context"
	"log/slog"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/infra"
	"escrowbook/internal/pkg/clock"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/commands"

	"github.com/google/uuid"
)

// DueBookingSource feeds the sweep with booking IDs only; each booking is
// re-read under a row lock by the transition command, so a stale candidate
// list is harmless.
type DueBookingSource interface {
	DueForStart(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error)
	DueForCompletion(ctx context.Context, deadline time.Time, limit int32) ([]uuid.UUID, error)
}

type EscrowReader interface {
	EscrowByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Record, error)
}

// Scheduler drives the time-based transitions: confirmed bookings whose start
// has arrived move to in_progress, and in_progress bookings past their end
// plus the grace period move to completed.
type Scheduler struct {
	due       DueBookingSource
	escrow    EscrowReader
	bookings  commands.BookingCommands
	clock     clock.Clock
	cfg       config.BookingConfig
	escrowCfg config.EscrowConfig
	logger    *slog.Logger

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(
	due DueBookingSource,
	escrowReader EscrowReader,
	bookings commands.BookingCommands,
	clk clock.Clock,
	cfg config.BookingConfig,
	escrowCfg config.EscrowConfig,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		due:       due,
		escrow:    escrowReader,
		bookings:  bookings,
		clock:     clk,
		cfg:       cfg,
		escrowCfg: escrowCfg,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TickInterval)
			s.RunOnce(ctx)
			cancel()
		}
	}
}

// RunOnce executes a single sweep. Failures on one booking never stop the
// rest of the batch.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.clock.Now()
	s.sweepStarts(ctx, now)
	s.sweepCompletions(ctx, now)
}

func (s *Scheduler) sweepStarts(ctx context.Context, now time.Time) {
	ids, err := s.due.DueForStart(ctx, now, int32(s.cfg.SweepBatchSize))
	if err != nil {
		s.logger.Error("sweep: failed to list bookings due for start", "error", err)
		return
	}
	for _, id := range ids {
		if _, err := s.bookings.Transition(ctx, id, booking.StatusInProgress, booking.PlatformActor()); err != nil {
			s.reportSweepErr("start", id, err)
		}
	}
}

func (s *Scheduler) sweepCompletions(ctx context.Context, now time.Time) {
	// DueForCompletion filters on scheduled end; the grace period is applied
	// by shifting the deadline.
	ids, err := s.due.DueForCompletion(ctx, now.Add(-s.cfg.GracePeriod), int32(s.cfg.SweepBatchSize))
	if err != nil {
		s.logger.Error("sweep: failed to list bookings due for completion", "error", err)
		return
	}
	for _, id := range ids {
		if err := s.completeOne(ctx, id); err != nil {
			s.reportSweepErr("completion", id, err)
		}
	}
}

func (s *Scheduler) completeOne(ctx context.Context, id uuid.UUID) error {
	funded := false
	if rec, err := s.escrow.EscrowByBooking(ctx, id); err == nil {
		funded = rec.Funded()
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return err
	}

	if !funded {
		_, err := s.bookings.Transition(ctx, id, booking.StatusCompleted, booking.PlatformActor())
		return err
	}

	// Funded bookings complete through the ledger. The platform only submits
	// the release when explicitly enabled; otherwise the customer's own
	// completion request (or support intervention) resolves the booking.
	if !s.escrowCfg.PlatformCompletion {
		return nil
	}
	_, err := s.bookings.RequestCompletion(ctx, id, booking.PlatformActor())
	return err
}

func (s *Scheduler) reportSweepErr(phase string, id uuid.UUID, err error) {
	// A concurrent actor won the race; the booking is no longer due.
	if errs.Is(err, errs.ErrStaleVersion) || errs.Is(err, errs.ErrInvalidTransition) {
		s.logger.Debug("sweep: booking changed concurrently, skipping", "phase", phase, "booking_id", id)
		return
	}
	s.logger.Error("sweep: transition failed", "phase", phase, "booking_id", id, "error", err)
}
