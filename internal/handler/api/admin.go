package api

import (
	"context"
	"errors"
	"net/http"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"
	reqdto "seatwise/internal/handler/dto/request"
	resdto "seatwise/internal/handler/dto/response"
	"seatwise/internal/handler/httperr"
	"seatwise/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// AdminHandler covers the operator surface: design creation, attaching a
// design to an event, seat initialization, re-snapshot and the block/unblock
// overlay.
type AdminHandler struct {
	designs   *commands.Designs
	instances *commands.Instances
}

func NewAdminHandler(designs *commands.Designs, instances *commands.Instances) *AdminHandler {
	return &AdminHandler{designs: designs, instances: instances}
}

// @Summary Create seating design
// @Tags admin
// @Accept json
// @Produce json
// @Param request body reqdto.CreateDesignRequest true "Design definition"
// @Success 201 {object} resdto.DesignCreatedResponse
// @Failure 400 {object} httperr.Response
// @Router /designs [post]
func (h *AdminHandler) CreateDesign(c *gin.Context) {
	var req reqdto.CreateDesignRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request format")
		return
	}

	id, err := h.designs.Create(c.Request.Context(), commands.CreateDesignInput{
		VenueID:      req.VenueID,
		Name:         req.Name,
		CanvasWidth:  req.CanvasWidth,
		CanvasHeight: req.CanvasHeight,
		Sections:     req.Sections,
		Publish:      req.Publish,
	})
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.DesignCreatedResponse{DesignID: id})
}

// @Summary Attach design to event
// @Description Freeze the design's published revision into a new seating instance
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Design ID"
// @Param request body reqdto.AttachDesignRequest true "Target event"
// @Success 201 {object} resdto.InstanceResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /designs/{id}/attach [post]
func (h *AdminHandler) AttachDesign(c *gin.Context) {
	designID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req reqdto.AttachDesignRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request format")
		return
	}

	result, err := h.instances.AttachDesign(c.Request.Context(), commands.AttachDesignInput{
		EventID:  req.EventID,
		DesignID: designID,
	})
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromAttachResult(result))
}

// @Summary Initialize seat inventory
// @Description Materialize one seat row per geometry node; repeat calls are no-ops
// @Tags admin
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} resdto.SeatCountResponse
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /instances/{id}/initialize [post]
func (h *AdminHandler) InitializeSeats(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	created, err := h.instances.InitializeSeats(c.Request.Context(), instanceID)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.SeatCountResponse{Count: created})
}

// @Summary Re-snapshot instance geometry
// @Description Rebuild the frozen geometry from the design's current published revision
// @Tags admin
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} resdto.InstanceResponse
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /instances/{id}/resnapshot [post]
func (h *AdminHandler) Resnapshot(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.instances.Resnapshot(c.Request.Context(), instanceID)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAttachResult(result))
}

// @Summary Archive instance
// @Description Retire the seating instance once its event is over
// @Tags admin
// @Produce json
// @Param id path string true "Instance ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /instances/{id}/archive [post]
func (h *AdminHandler) ArchiveInstance(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.instances.Archive(c.Request.Context(), instanceID); err != nil {
		respondAdminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Block seats
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param request body reqdto.MoveSeatsRequest true "Seats to block"
// @Success 200 {object} resdto.SeatCountResponse
// @Router /instances/{id}/block [post]
func (h *AdminHandler) BlockSeats(c *gin.Context) {
	h.moveSeats(c, h.instances.BlockSeats)
}

// @Summary Unblock seats
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param request body reqdto.MoveSeatsRequest true "Seats to unblock"
// @Success 200 {object} resdto.SeatCountResponse
// @Router /instances/{id}/unblock [post]
func (h *AdminHandler) UnblockSeats(c *gin.Context) {
	h.moveSeats(c, h.instances.UnblockSeats)
}

func (h *AdminHandler) moveSeats(c *gin.Context, move func(ctx context.Context, in commands.BlockSeatsInput) (int64, error)) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req reqdto.MoveSeatsRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request format")
		return
	}

	moved, err := move(c.Request.Context(), commands.BlockSeatsInput{
		InstanceID: instanceID,
		SeatUIDs:   req.SeatUIDs,
	})
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.SeatCountResponse{Count: moved})
}

func respondAdminError(c *gin.Context, err error) {
	var status int
	var msg string
	switch {
	case errors.Is(err, commands.ErrDesignNotFound):
		status, msg = http.StatusNotFound, "Design not found"
	case errors.Is(err, commands.ErrInstanceNotFound):
		status, msg = http.StatusNotFound, "Seating instance not found"
	case errors.Is(err, commands.ErrInstanceExists):
		status, msg = http.StatusConflict, "Event already has a seating instance"
	case errors.Is(err, design.ErrInvalidDesign):
		status, msg = http.StatusUnprocessableEntity, "Design cannot be snapshotted"
	case errors.Is(err, commands.ErrEmptyGeometry):
		status, msg = http.StatusUnprocessableEntity, "Geometry contains no seats"
	case errors.Is(err, seating.ErrInvalidTransition):
		status, msg = http.StatusConflict, "Instance is archived"
	case errors.Is(err, design.ErrEmptyName):
		status, msg = http.StatusBadRequest, "Design name is required"
	default:
		status, msg = http.StatusInternalServerError, "Internal server error"
	}
	httperr.AbortWithError(c, status, err, msg, nil)
}
