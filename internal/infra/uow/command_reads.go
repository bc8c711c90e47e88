package uow

import (
	"context"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/domain/offering"
	"escrowbook/internal/infra/db"
	"escrowbook/internal/infra/repository"

	"github.com/google/uuid"
)

type commandReads struct {
	dbtx db.DBTX
}

func (r *commandReads) OfferingByID(ctx context.Context, id uuid.UUID) (*offering.Offering, error) {
	return repository.FindOfferingByID(ctx, r.dbtx, id)
}

func (r *commandReads) BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return repository.FindBookingByID(ctx, r.dbtx, id)
}

func (r *commandReads) EscrowByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Record, error) {
	return repository.FindEscrowByBooking(ctx, r.dbtx, bookingID)
}
