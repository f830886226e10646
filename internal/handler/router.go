package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"seatwise/internal/handler/api"
	"seatwise/internal/handler/middleware"
	"seatwise/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	inventoryHandler *api.InventoryHandler,
	seatMapHandler *api.SeatMapHandler,
	adminHandler *api.AdminHandler,
	sessionMiddleware *middleware.SessionMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, inventoryHandler, seatMapHandler, adminHandler, sessionMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	inventoryHandler *api.InventoryHandler,
	seatMapHandler *api.SeatMapHandler,
	adminHandler *api.AdminHandler,
	sessionMiddleware *middleware.SessionMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		instances := apiGroup.Group("/instances/:id")
		instances.Use(sessionMiddleware.EnsureSession())
		{
			addRoutes(instances, []route{
				{Method: http.MethodGet, Path: "/seat-map", Handler: seatMapHandler.GetSeatMap},
				{Method: http.MethodPost, Path: "/holds", Handler: inventoryHandler.CreateHold},
				{Method: http.MethodPatch, Path: "/holds/:seatUid", Handler: inventoryHandler.ExtendHold},
				{Method: http.MethodDelete, Path: "/holds/:seatUid", Handler: inventoryHandler.ReleaseHold},
				{Method: http.MethodPost, Path: "/holds/:seatUid/confirm", Handler: inventoryHandler.ConfirmSeat},
			})
		}

		admin := apiGroup.Group("")
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/designs", Handler: adminHandler.CreateDesign},
				{Method: http.MethodPost, Path: "/designs/:id/attach", Handler: adminHandler.AttachDesign},
				{Method: http.MethodPost, Path: "/instances/:id/initialize", Handler: adminHandler.InitializeSeats},
				{Method: http.MethodPost, Path: "/instances/:id/resnapshot", Handler: adminHandler.Resnapshot},
				{Method: http.MethodPost, Path: "/instances/:id/archive", Handler: adminHandler.ArchiveInstance},
				{Method: http.MethodPost, Path: "/instances/:id/block", Handler: adminHandler.BlockSeats},
				{Method: http.MethodPost, Path: "/instances/:id/unblock", Handler: adminHandler.UnblockSeats},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, r.Handler)
		case http.MethodPost:
			g.POST(r.Path, r.Handler)
		case http.MethodPut:
			g.PUT(r.Path, r.Handler)
		case http.MethodPatch:
			g.PATCH(r.Path, r.Handler)
		case http.MethodDelete:
			g.DELETE(r.Path, r.Handler)
		default:
			g.Any(r.Path, r.Handler)
		}
	}
}
