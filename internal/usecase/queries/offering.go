package queries

import (
	"context"

	"escrowbook/internal/pkg/errs"

	"github.com/google/uuid"
)

type OfferingQueries interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*OfferingView, error)
}

type OfferingViewRepo interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*OfferingView, error)
}

type offeringQueriesImpl struct {
	repo OfferingViewRepo
}

func NewOfferingQueries(repo OfferingViewRepo) OfferingQueries {
	return &offeringQueriesImpl{repo: repo}
}

func (q *offeringQueriesImpl) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*OfferingView, error) {
	views, err := q.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}
