package repository

import (
	"context"
	"errors"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeExclusionViolation  = "23P01"
	pgErrCodeForeignKeyViolation = "23503"
)

type BookingRepository struct {
	dbtx db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{dbtx: dbtx}
}

const bookingColumns = `id, offering_id, provider_id, customer_id, start_at, duration_min, buffer_min, status, auto, version, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO bookings (id, offering_id, provider_id, customer_id, start_at, duration_min, buffer_min, status, auto, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID(), b.OfferingID(), b.ProviderID(), b.CustomerID(),
		b.StartAt(), int32(b.Duration().Minutes()), int32(b.Buffer().Minutes()),
		b.Status().String(), b.Auto(), b.Version(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgErrCodeExclusionViolation:
				// The committed-slot exclusion constraint fired: the slot was
				// taken by a concurrent transaction.
				return infra.WrapRepoErr("slot already committed", err, infra.KindConflict)
			case pgErrCodeUniqueViolation:
				return infra.WrapRepoErr("booking already exists", err, infra.KindDuplicateKey)
			case pgErrCodeForeignKeyViolation:
				return infra.WrapRepoErr("offering or party missing", err, infra.KindForeignKeyViolated)
			}
		}
		return infra.WrapRepoErr("failed to insert booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row := r.dbtx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	return scanBooking(row)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, to booking.Status, auto bool, expectedVersion int64, at time.Time) error {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE bookings
		SET status = $1, auto = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`,
		to.String(), auto, at, id, expectedVersion,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeExclusionViolation {
			return infra.WrapRepoErr("status change collides with committed slot", err, infra.KindConflict)
		}
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the booking vanished or the version moved under us; the
		// caller distinguishes by refetching.
		return infra.WrapRepoErr("booking version changed concurrently", nil, infra.KindStaleVersion)
	}
	return nil
}

func (r *BookingRepository) AppendTransition(ctx context.Context, rec *booking.TransitionRecord) error {
	var actorID *uuid.UUID
	if rec.Actor.ID != uuid.Nil {
		id := rec.Actor.ID
		actorID = &id
	}
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO booking_transitions (booking_id, from_status, to_status, actor_role, actor_id, event_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.BookingID, rec.From.String(), rec.To.String(),
		rec.Actor.Role.String(), actorID, rec.EventID, rec.OccurredAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append transition record", err)
	}
	return nil
}

// CommittedWindows returns the buffer-expanded blocked windows of committed
// bookings for the provider that intersect the given range.
func (r *BookingRepository) CommittedWindows(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) ([]timeslot.Interval, error) {
	rows, err := r.dbtx.Query(ctx, `
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

func FindBookingByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	row := dbtx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, offeringID, providerID, customerID uuid.UUID
		startAt, createdAt, updatedAt          time.Time
		durationMin, bufferMin                 int32
		status                                 string
		auto                                   bool
		version                                int64
	)
	err := row.Scan(&id, &offeringID, &providerID, &customerID, &startAt,
		&durationMin, &bufferMin, &status, &auto, &version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan booking", err)
	}

	return booking.Reconstruct(
		id, offeringID, providerID, customerID,
		startAt,
		time.Duration(durationMin)*time.Minute,
		time.Duration(bufferMin)*time.Minute,
		booking.Status(status),
		auto,
		version,
		createdAt, updatedAt,
	), nil
}

func committedStatusStrings() []string {
	statuses := booking.CommittedStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}
