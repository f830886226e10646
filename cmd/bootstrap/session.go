package bootstrap

import (
	"seatwise/internal/pkg/clock"
	"seatwise/internal/pkg/config"
	"seatwise/internal/pkg/session"

	"go.uber.org/fx"
)

var SessionModule = fx.Module("session",
	fx.Provide(
		NewSessionManager,
	),
)

func NewSessionManager(cfg config.Config, clk clock.Clock) *session.Manager {
	return session.NewManager(cfg.Session.Secret, cfg.Session.TTL, clk)
}
