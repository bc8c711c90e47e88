package components

import (
	"log/slog"

	"escrowbook/internal/infra/cache"
	"escrowbook/internal/infra/calendar"
	"escrowbook/internal/infra/escrow"
	"escrowbook/internal/infra/events"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/usecase/commands"
	"escrowbook/internal/usecase/queries"

	"go.uber.org/fx"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			escrow.NewClient,
			fx.As(new(commands.EscrowGateway)),
		),
		func(p *events.Publisher) commands.EventPublisher { return p },
		func(c *cache.AvailabilityCache) commands.AvailabilityInvalidator { return c },
		func(c *cache.AvailabilityCache) queries.MonthCache { return c },
		NewBusySource,
		func(s calendar.BusyIntervalSource) commands.BusyIntervalSource { return s },
		func(s calendar.BusyIntervalSource) queries.CalendarBusyReader { return s },
	),
)

// NewBusySource wires the external calendar lookup, falling back to a no-op
// source when sync is disabled so availability never waits on Google.
func NewBusySource(cfg config.Config, links calendar.LinkReader, logger *slog.Logger) calendar.BusyIntervalSource {
	if !cfg.Calendar.Enabled {
		return calendar.NoopSource{}
	}
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Calendar.ClientID,
		ClientSecret: cfg.Calendar.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarReadonlyScope},
	}
	return calendar.NewGoogleSource(links, oauthConfig, cfg.Calendar, logger)
}
