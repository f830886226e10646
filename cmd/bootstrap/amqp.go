package bootstrap

import (
	"context"
	"log/slog"

	"seatwise/internal/infra/events"
	"seatwise/internal/pkg/config"
	"seatwise/internal/worker"

	"go.uber.org/fx"
)

var AMQPModule = fx.Module("amqp",
	fx.Provide(
		NewEventPublisher,
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (worker.EventPublisher, error) {
	if cfg.AMQP.URL == "" {
		slog.Info("amqp disabled, seat events will be dropped after logging")
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewPublisher(cfg.AMQP)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}
