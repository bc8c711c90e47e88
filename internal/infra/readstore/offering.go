package readstore

import (
	"context"

	"escrowbook/internal/domain/offering"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"
	"escrowbook/internal/infra/repository"
	"escrowbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type OfferingStore interface {
	// FindByID returns the full domain entity; the availability engine needs
	// the schedule and exceptions, not just a flat view.
	FindByID(ctx context.Context, id uuid.UUID) (*offering.Offering, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*queries.OfferingView, error)
}

type OfferingReadStore struct {
	db db.DBTX
}

func NewOfferingReadStore(db db.DBTX) *OfferingReadStore {
	return &OfferingReadStore{db: db}
}

func (r *OfferingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*offering.Offering, error) {
	return repository.FindOfferingByID(ctx, r.db, id)
}

func (r *OfferingReadStore) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*queries.OfferingView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, provider_id, title, duration_min, buffer_min, price_cents, fee_bps, timezone, created_at, updated_at
		FROM offerings
		WHERE provider_id = $1
		ORDER BY created_at DESC`, providerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list offerings", err)
	}
	defer rows.Close()

	var out []*queries.OfferingView
	for rows.Next() {
		view := &queries.OfferingView{}
		if err := rows.Scan(&view.ID, &view.ProviderID, &view.Title,
			&view.DurationMin, &view.BufferMin, &view.PriceCents, &view.FeeBps,
			&view.Timezone, &view.CreatedAt, &view.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan offering row", err)
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate offerings", err)
	}
	return out, nil
}
