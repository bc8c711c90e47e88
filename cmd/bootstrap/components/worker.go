package components

import (
	"context"

	"escrowbook/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewScheduler,
		worker.NewMonitor,
	),
	fx.Invoke(runWorkers),
)

func runWorkers(lc fx.Lifecycle, scheduler *worker.Scheduler, monitor *worker.Monitor) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			scheduler.Start()
			monitor.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			monitor.Stop()
			scheduler.Stop()
			return nil
		},
	})
}
