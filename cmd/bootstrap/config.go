package bootstrap

import (
	"escrowbook/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.BookingConfig { return cfg.Booking },
		func(cfg config.Config) config.EscrowConfig { return cfg.Escrow },
		func(cfg config.Config) config.AMQPConfig { return cfg.AMQP },
	),
)
