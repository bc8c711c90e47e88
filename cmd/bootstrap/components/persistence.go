package components

import (
	"escrowbook/internal/infra/calendar"
	"escrowbook/internal/infra/db"
	"escrowbook/internal/infra/readstore"
	"escrowbook/internal/infra/repository"
	"escrowbook/internal/infra/uow"
	"escrowbook/internal/usecase/commands"
	"escrowbook/internal/usecase/queries"
	"escrowbook/internal/usecase/shared"
	"escrowbook/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Booking read side serves queries, command responses and the
		// scheduler's due-booking sweeps from the same store.
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingViewRepo)),
			fx.As(new(queries.BlockedWindowReader)),
			fx.As(new(commands.BookingViews)),
			fx.As(new(worker.DueBookingSource)),
			fx.As(new(worker.EscrowReader)),
		),
		// Offering read side
		fx.Annotate(
			readstore.NewOfferingReadStore,
			fx.As(new(queries.OfferingReader)),
			fx.As(new(queries.OfferingViewRepo)),
		),
		// Calendar links
		fx.Annotate(
			repository.NewCalendarLinkRepository,
			fx.As(new(calendar.LinkReader)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
