package queries

import (
	"context"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/infra"
	"escrowbook/internal/pkg/errs"

	"github.com/google/uuid"
)

const defaultPageSize = 50

type Cursor struct {
	LastCreatedAt time.Time
	LastID        uuid.UUID
}

type BookingQueries interface {
	// GetByID returns the booking with its full transition history. Only the
	// booking's customer, its provider, or the platform may read it.
	GetByID(ctx context.Context, actor booking.Actor, id uuid.UUID) (*BookingView, error)
	// List operations accept an optional status filter; the empty string
	// matches every status.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, status string, limit int) ([]*BookingListItem, error)
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByCustomerFirstPage(ctx context.Context, customerID uuid.UUID, status string, limit int32) ([]*BookingListItem, error)
	FindByCustomerKeyset(ctx context.Context, customerID uuid.UUID, status string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindByProviderFirstPage(ctx context.Context, providerID uuid.UUID, status string, limit int32) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
}

func NewBookingQueries(repo BookingViewRepo) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor booking.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	switch actor.Role {
	case booking.RolePlatform, booking.RoleLedger:
	case booking.RoleCustomer:
		if actor.ID != view.CustomerID {
			return nil, errs.ErrInsufficientPermission
		}
	case booking.RoleProvider:
		if actor.ID != view.ProviderID {
			return nil, errs.ErrInsufficientPermission
		}
	default:
		return nil, errs.ErrInsufficientPermission
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	var (
		rows []*BookingListItem
		err  error
	)
	if after == nil {
		rows, err = q.repo.FindByCustomerFirstPage(ctx, customerID, status, int32(limit))
	} else {
		rows, err = q.repo.FindByCustomerKeyset(ctx, customerID, status, after.LastCreatedAt, after.LastID, int32(limit))
	}
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{LastCreatedAt: last.CreatedAt, LastID: last.ID}
	}
	return rows, next, nil
}

func (q *bookingQueriesImpl) ListByProvider(ctx context.Context, providerID uuid.UUID, status string, limit int) ([]*BookingListItem, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := q.repo.FindByProviderFirstPage(ctx, providerID, status, int32(limit))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return rows, nil
}
