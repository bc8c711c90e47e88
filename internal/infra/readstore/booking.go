package readstore

import (
	"context"
	"errors"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"
	"escrowbook/internal/infra/repository"
	"escrowbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error)
	FindByCustomerFirstPage(ctx context.Context, customerID uuid.UUID, status string, limit int32) ([]*queries.BookingListItem, error)
	FindByCustomerKeyset(ctx context.Context, customerID uuid.UUID, status string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error)
	FindByProviderFirstPage(ctx context.Context, providerID uuid.UUID, status string, limit int32) ([]*queries.BookingListItem, error)
	// CommittedWindows is the query-side twin of the commit-time recheck:
	// buffer-expanded blocked windows of committed bookings in the range.
	CommittedWindows(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) ([]timeslot.Interval, error)
	DueForStart(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error)
	DueForCompletion(ctx context.Context, deadline time.Time, limit int32) ([]uuid.UUID, error)
	EscrowByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Record, error)
}

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	view := &queries.BookingView{}
	var durationMin int32
	err := r.db.QueryRow(ctx, `
		SELECT b.id, b.offering_id, o.title, b.provider_id, b.customer_id,
		       b.start_at, b.duration_min, b.status, b.auto, b.version,
		       o.price_cents, e.status, b.created_at, b.updated_at
		FROM bookings b
		JOIN offerings o ON o.id = b.offering_id
		LEFT JOIN escrow_records e ON e.booking_id = b.id
		WHERE b.id = $1`, id,
	).Scan(&view.ID, &view.OfferingID, &view.OfferingTitle, &view.ProviderID, &view.CustomerID,
		&view.StartAt, &durationMin, &view.Status, &view.Auto, &view.Version,
		&view.PriceCents, &view.EscrowStatus, &view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	view.EndAt = view.StartAt.Add(time.Duration(durationMin) * time.Minute)

	history, err := r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	view.History = history
	return view, nil
}

func (r *BookingReadStore) loadHistory(ctx context.Context, bookingID uuid.UUID) ([]queries.TransitionView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT from_status, to_status, actor_role, actor_id, event_id, occurred_at
		FROM booking_transitions
		WHERE booking_id = $1
		ORDER BY occurred_at, id`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query booking history", err)
	}
	defer rows.Close()

	var out []queries.TransitionView
	for rows.Next() {
		var tv queries.TransitionView
		if err := rows.Scan(&tv.FromStatus, &tv.ToStatus, &tv.ActorRole, &tv.ActorID, &tv.EventID, &tv.OccurredAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking history row", err)
		}
		out = append(out, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking history", err)
	}
	return out, nil
}

const listItemQuery = `
	SELECT b.id, b.offering_id, o.title, b.start_at, b.duration_min, b.status, b.created_at
	FROM bookings b
	JOIN offerings o ON o.id = b.offering_id`

func (r *BookingReadStore) FindByCustomerFirstPage(ctx context.Context, customerID uuid.UUID, status string, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, listItemQuery+`
		WHERE b.customer_id = $1
		  AND ($2 = '' OR b.status = $2)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $3`, customerID, status, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find bookings first page", err)
	}
	return scanListItems(rows)
}

func (r *BookingReadStore) FindByCustomerKeyset(ctx context.Context, customerID uuid.UUID, status string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, listItemQuery+`
		WHERE b.customer_id = $1
		  AND ($2 = '' OR b.status = $2)
		  AND (b.created_at, b.id) < ($3, $4)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $5`, customerID, status, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find bookings keyset", err)
	}
	return scanListItems(rows)
}

func (r *BookingReadStore) FindByProviderFirstPage(ctx context.Context, providerID uuid.UUID, status string, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, listItemQuery+`
		WHERE b.provider_id = $1
		  AND ($2 = '' OR b.status = $2)
		ORDER BY b.start_at DESC, b.id DESC
		LIMIT $3`, providerID, status, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find provider bookings", err)
	}
	return scanListItems(rows)
}

func scanListItems(rows pgx.Rows) ([]*queries.BookingListItem, error) {
	defer rows.Close()

	var out []*queries.BookingListItem
	for rows.Next() {
		item := &queries.BookingListItem{}
		var durationMin int32
		if err := rows.Scan(&item.ID, &item.OfferingID, &item.OfferingTitle,
			&item.StartAt, &durationMin, &item.Status, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		item.EndAt = item.StartAt.Add(time.Duration(durationMin) * time.Minute)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking list", err)
	}
	return out, nil
}

func (r *BookingReadStore) CommittedWindows(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) ([]timeslot.Interval, error) {
	rows, err := r.db.Query(ctx, `
		SELECT start_at - make_interval(mins => buffer_min),
		       start_at + make_interval(mins => duration_min + buffer_min)
		FROM bookings
		WHERE provider_id = $1
		  AND status = ANY($2)
		  AND start_at - make_interval(mins => buffer_min) < $4
		  AND start_at + make_interval(mins => duration_min + buffer_min) > $3
		ORDER BY start_at`,
		providerID, committedStatusStrings(), within.Start, within.End,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query committed windows", err)
	}
	defer rows.Close()

	var out []timeslot.Interval
	for rows.Next() {
		var iv timeslot.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, infra.WrapRepoErr("failed to scan committed window", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate committed windows", err)
	}
	return out, nil
}

// DueForStart lists confirmed bookings whose start time has passed. IDs only:
// the sweep re-reads each booking under a row lock before transitioning.
func (r *BookingReadStore) DueForStart(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM bookings
		WHERE status = $1 AND start_at <= $2
		ORDER BY start_at
		LIMIT $3`,
		booking.StatusConfirmed.String(), now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query bookings due for start", err)
	}
	return scanIDs(rows)
}

// DueForCompletion lists in-progress bookings whose scheduled end plus the
// grace period is before the given deadline.
func (r *BookingReadStore) DueForCompletion(ctx context.Context, deadline time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM bookings
		WHERE status = $1
		  AND start_at + make_interval(mins => duration_min) <= $2
		ORDER BY start_at
		LIMIT $3`,
		booking.StatusInProgress.String(), deadline, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query bookings due for completion", err)
	}
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking id", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking ids", err)
	}
	return out, nil
}

func (r *BookingReadStore) EscrowByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Record, error) {
	return repository.FindEscrowByBooking(ctx, r.db, bookingID)
}

func committedStatusStrings() []string {
	statuses := booking.CommittedStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}
