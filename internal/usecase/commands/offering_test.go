//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"escrowbook/internal/domain/offering"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/commands"
	"escrowbook/tests/common/builder"
	"escrowbook/tests/common/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newOfferingFixture(t *testing.T) (*fakeUoW, *mock.MockAvailabilityInvalidator, commands.OfferingCommands) {
	t.Helper()
	ctrl := gomock.NewController(t)
	uow := newFakeUoW()
	invalidator := mock.NewMockAvailabilityInvalidator(ctrl)
	return uow, invalidator, commands.NewOfferingUseCase(uow, invalidator)
}

func TestCreateOffering(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a valid offering", func(t *testing.T) {
		uow, _, uc := newOfferingFixture(t)
		b := builder.NewOfferingBuilder()

		off, err := uc.Create(ctx, commands.CreateOfferingInput{
			ProviderID: b.ProviderID,
			Title:      b.Title,
			Duration:   b.Duration,
			Buffer:     b.Buffer,
			PriceCents: b.PriceCents,
			FeeBps:     b.FeeBps,
			Timezone:   b.Timezone,
			Schedule:   b.Schedule,
		})
		require.NoError(t, err)
		assert.Equal(t, b.ProviderID, off.ProviderID())
		require.Len(t, uow.tx.offerings.created, 1)
	})

	t.Run("invalid definition is rejected", func(t *testing.T) {
		uow, _, uc := newOfferingFixture(t)

		_, err := uc.Create(ctx, commands.CreateOfferingInput{
			ProviderID: uuid.New(),
			Title:      "Broken",
			Duration:   0,
			Timezone:   "UTC",
		})
		assert.ErrorIs(t, err, errs.ErrInvalidSchedule)
		assert.Empty(t, uow.tx.offerings.created)
	})
}

func TestReplaceSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("owner replaces the schedule and drops the cache", func(t *testing.T) {
		uow, invalidator, uc := newOfferingFixture(t)
		existing, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		uow.reads.offering = existing

		invalidator.EXPECT().InvalidateProvider(gomock.Any(), existing.ProviderID())

		var weekends offering.WeeklySchedule
		weekends[time.Saturday] = offering.Window{Enabled: true, StartMin: 600, EndMin: 840}

		updated, err := uc.ReplaceSchedule(ctx, commands.ReplaceScheduleInput{
			OfferingID: existing.ID(),
			ProviderID: existing.ProviderID(),
			Schedule:   weekends,
		})
		require.NoError(t, err)
		assert.True(t, updated.Schedule()[time.Saturday].Enabled)
		require.Len(t, uow.tx.offerings.replaced, 1)
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		uow, _, uc := newOfferingFixture(t)
		existing, err := builder.NewOfferingBuilder().BuildDomain()
		require.NoError(t, err)
		uow.reads.offering = existing

		_, err = uc.ReplaceSchedule(ctx, commands.ReplaceScheduleInput{
			OfferingID: existing.ID(),
			ProviderID: uuid.New(),
			Schedule:   existing.Schedule(),
		})
		assert.ErrorIs(t, err, errs.ErrInsufficientPermission)
		assert.Empty(t, uow.tx.offerings.replaced)
	})

	t.Run("unknown offering", func(t *testing.T) {
		_, _, uc := newOfferingFixture(t)

		_, err := uc.ReplaceSchedule(ctx, commands.ReplaceScheduleInput{
			OfferingID: uuid.New(),
			ProviderID: uuid.New(),
		})
		assert.ErrorIs(t, err, errs.ErrOfferingNotFound)
	})
}
