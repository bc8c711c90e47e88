package commands

import (
	"context"
	"time"

	"escrowbook/internal/domain/offering"
	"escrowbook/internal/infra"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateOfferingInput struct {
	ProviderID uuid.UUID
	Title      string
	Duration   time.Duration
	Buffer     time.Duration
	PriceCents int64
	FeeBps     int32
	Timezone   string
	Schedule   offering.WeeklySchedule
	Exceptions []offering.Exception
}

type ReplaceScheduleInput struct {
	OfferingID uuid.UUID
	ProviderID uuid.UUID
	Schedule   offering.WeeklySchedule
	Exceptions []offering.Exception
}

type OfferingCommands interface {
	Create(ctx context.Context, input CreateOfferingInput) (*offering.Offering, error)
	// ReplaceSchedule rewrites the weekly windows and exceptions. Existing
	// committed bookings are untouched; only future availability changes.
	ReplaceSchedule(ctx context.Context, input ReplaceScheduleInput) (*offering.Offering, error)
}

type offeringUseCaseImpl struct {
	uow         shared.UnitOfWork
	invalidator AvailabilityInvalidator
}

func NewOfferingUseCase(uow shared.UnitOfWork, invalidator AvailabilityInvalidator) OfferingCommands {
	return &offeringUseCaseImpl{uow: uow, invalidator: invalidator}
}

func (u *offeringUseCaseImpl) Create(ctx context.Context, input CreateOfferingInput) (*offering.Offering, error) {
	entity, err := offering.NewOffering(
		input.ProviderID, input.Title,
		input.Duration, input.Buffer,
		input.PriceCents, input.FeeBps,
		input.Timezone, input.Schedule, input.Exceptions,
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidSchedule)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Offerings().Create(ctx, entity); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (u *offeringUseCaseImpl) ReplaceSchedule(ctx context.Context, input ReplaceScheduleInput) (*offering.Offering, error) {
	var updated *offering.Offering
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := tx.Reads().OfferingByID(ctx, input.OfferingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOfferingNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if existing.ProviderID() != input.ProviderID {
			return errs.ErrInsufficientPermission
		}

		updated, err = existing.WithSchedule(input.Schedule, input.Exceptions)
		if err != nil {
			return errs.Mark(err, errs.ErrInvalidSchedule)
		}
		if err := tx.Offerings().ReplaceSchedule(ctx, updated); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.invalidator.InvalidateProvider(ctx, input.ProviderID)
	return updated, nil
}
