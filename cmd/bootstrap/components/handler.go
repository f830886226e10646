package components

import (
	"seatwise/internal/handler"
	"seatwise/internal/handler/api"
	"seatwise/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewInventoryHandler,
		api.NewSeatMapHandler,
		api.NewAdminHandler,
		middleware.NewSessionMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
