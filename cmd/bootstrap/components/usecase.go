package components

import (
	"seatwise/internal/pkg/clock"
	"seatwise/internal/pkg/config"
	"seatwise/internal/usecase/commands"
	"seatwise/internal/usecase/queries"
	"seatwise/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		NewInventoryCommands,
		commands.NewInstances,
		commands.NewDesigns,
		queries.NewSeatMap,
	),
)

func NewInventoryCommands(u shared.UnitOfWork, clk clock.Clock, cfg config.Config) *commands.Inventory {
	return commands.NewInventory(u, clk, cfg.Inventory)
}
