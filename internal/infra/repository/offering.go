package repository

import (
	"context"
	"errors"
	"time"

	"escrowbook/internal/domain/offering"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OfferingRepository struct {
	dbtx db.DBTX
}

func NewOfferingRepository(dbtx db.DBTX) *OfferingRepository {
	return &OfferingRepository{dbtx: dbtx}
}

func (r *OfferingRepository) Create(ctx context.Context, off *offering.Offering) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO offerings (id, provider_id, title, duration_min, buffer_min, price_cents, fee_bps, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		off.ID(), off.ProviderID(), off.Title(),
		int32(off.Duration().Minutes()), int32(off.Buffer().Minutes()),
		off.PriceCents(), off.FeeBps(), off.Timezone(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert offering", err)
	}
	return r.insertScheduleRows(ctx, off)
}

// ReplaceSchedule rewrites the weekly windows and exceptions atomically;
// callers run it inside a transaction.
func (r *OfferingRepository) ReplaceSchedule(ctx context.Context, off *offering.Offering) error {
	if _, err := r.dbtx.Exec(ctx, `DELETE FROM offering_windows WHERE offering_id = $1`, off.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear offering windows", err)
	}
	if _, err := r.dbtx.Exec(ctx, `DELETE FROM offering_exceptions WHERE offering_id = $1`, off.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear offering exceptions", err)
	}
	if err := r.insertScheduleRows(ctx, off); err != nil {
		return err
	}
	if _, err := r.dbtx.Exec(ctx, `UPDATE offerings SET updated_at = now() WHERE id = $1`, off.ID()); err != nil {
		return infra.WrapRepoErr("failed to touch offering", err)
	}
	return nil
}

func (r *OfferingRepository) insertScheduleRows(ctx context.Context, off *offering.Offering) error {
	for weekday, w := range off.Schedule() {
		_, err := r.dbtx.Exec(ctx, `
			INSERT INTO offering_windows (offering_id, weekday, enabled, start_min, end_min)
			VALUES ($1, $2, $3, $4, $5)`,
			off.ID(), int16(weekday), w.Enabled, w.StartMin, w.EndMin,
		)
		if err != nil {
			return infra.WrapRepoErr("failed to insert offering window", err)
		}
	}
	for _, ex := range off.Exceptions() {
		_, err := r.dbtx.Exec(ctx, `
			INSERT INTO offering_exceptions (offering_id, date, enabled, start_min, end_min, reason)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			off.ID(), ex.Date, ex.Enabled, ex.StartMin, ex.EndMin, ex.Reason,
		)
		if err != nil {
			return infra.WrapRepoErr("failed to insert offering exception", err)
		}
	}
	return nil
}

func FindOfferingByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*offering.Offering, error) {
	var (
		offeringID, providerID  uuid.UUID
		title, timezone         string
		durationMin, bufferMin  int32
		priceCents              int64
		feeBps                  int32
		createdAt, updatedAt    time.Time
	)
	err := dbtx.QueryRow(ctx, `
		SELECT id, provider_id, title, duration_min, buffer_min, price_cents, fee_bps, timezone, created_at, updated_at
		FROM offerings WHERE id = $1`, id,
	).Scan(&offeringID, &providerID, &title, &durationMin, &bufferMin,
		&priceCents, &feeBps, &timezone, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("offering not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan offering", err)
	}

	schedule, err := loadSchedule(ctx, dbtx, offeringID)
	if err != nil {
		return nil, err
	}
	exceptions, err := loadExceptions(ctx, dbtx, offeringID)
	if err != nil {
		return nil, err
	}

	return offering.Reconstruct(
		offeringID, providerID, title,
		time.Duration(durationMin)*time.Minute,
		time.Duration(bufferMin)*time.Minute,
		priceCents, feeBps, timezone,
		schedule, exceptions,
		createdAt, updatedAt,
	), nil
}

func loadSchedule(ctx context.Context, dbtx db.DBTX, offeringID uuid.UUID) (offering.WeeklySchedule, error) {
	var schedule offering.WeeklySchedule
	rows, err := dbtx.Query(ctx, `
		SELECT weekday, enabled, start_min, end_min
		FROM offering_windows WHERE offering_id = $1`, offeringID)
	if err != nil {
		return schedule, infra.WrapRepoErr("failed to query offering windows", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			weekday int16
			w       offering.Window
		)
		if err := rows.Scan(&weekday, &w.Enabled, &w.StartMin, &w.EndMin); err != nil {
			return schedule, infra.WrapRepoErr("failed to scan offering window", err)
		}
		if weekday >= 0 && weekday < 7 {
			schedule[weekday] = w
		}
	}
	if err := rows.Err(); err != nil {
		return schedule, infra.WrapRepoErr("failed to iterate offering windows", err)
	}
	return schedule, nil
}

func loadExceptions(ctx context.Context, dbtx db.DBTX, offeringID uuid.UUID) ([]offering.Exception, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), enabled, start_min, end_min, reason
		FROM offering_exceptions WHERE offering_id = $1 ORDER BY date`, offeringID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query offering exceptions", err)
	}
	defer rows.Close()

	var out []offering.Exception
	for rows.Next() {
		var ex offering.Exception
		if err := rows.Scan(&ex.Date, &ex.Enabled, &ex.StartMin, &ex.EndMin, &ex.Reason); err != nil {
			return nil, infra.WrapRepoErr("failed to scan offering exception", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate offering exceptions", err)
	}
	return out, nil
}
