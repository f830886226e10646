package components

import (
	"context"
	"log/slog"

	"seatwise/internal/pkg/config"
	"seatwise/internal/usecase/commands"
	"seatwise/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewSweeper,
		worker.NewDispatcher,
	),
	fx.Invoke(startWorkers),
)

func NewSweeper(inventory *commands.Inventory, cfg config.Config, logger *slog.Logger) *worker.Sweeper {
	return worker.NewSweeper(inventory, cfg.Inventory, logger)
}

func startWorkers(lc fx.Lifecycle, sweeper *worker.Sweeper, dispatcher *worker.Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			dispatcher.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := sweeper.Stop(ctx); err != nil {
				return err
			}
			return dispatcher.Stop(ctx)
		},
	})
}
