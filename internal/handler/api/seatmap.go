package api

import (
	"errors"
	"net/http"

	"seatwise/internal/handler/httperr"
	"seatwise/internal/handler/middleware"
	"seatwise/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type SeatMapHandler struct {
	seatMap *queries.SeatMap
}

func NewSeatMapHandler(seatMap *queries.SeatMap) *SeatMapHandler {
	return &SeatMapHandler{seatMap: seatMap}
}

// @Summary Get seat map
// @Description Full seat map for one instance, classified for the requesting session
// @Tags seat-map
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} queries.SeatMapView
// @Failure 404 {object} httperr.Response
// @Router /instances/{id}/seat-map [get]
func (h *SeatMapHandler) GetSeatMap(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	view, err := h.seatMap.Get(c.Request.Context(), instanceID, middleware.GetSessionID(c))
	if err != nil {
		if errors.Is(err, queries.ErrInstanceNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Seating instance not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}
