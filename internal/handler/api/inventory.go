package api

import (
	"errors"
	"net/http"

	"seatwise/internal/domain/seating"
	reqdto "seatwise/internal/handler/dto/request"
	resdto "seatwise/internal/handler/dto/response"
	"seatwise/internal/handler/httperr"
	"seatwise/internal/handler/middleware"
	"seatwise/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventory *commands.Inventory
}

func NewInventoryHandler(inventory *commands.Inventory) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// @Summary Hold seats
// @Description Claim one or more seats for the browse session until the hold expires
// @Tags holds
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param request body reqdto.CreateHoldRequest true "Seats to hold"
// @Success 201 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /instances/{id}/holds [post]
func (h *InventoryHandler) CreateHold(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	sessionID := middleware.GetSessionID(c)

	var req reqdto.CreateHoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request format")
		return
	}

	if len(req.SeatUIDs) == 1 {
		result, err := h.inventory.Hold(c.Request.Context(), commands.HoldInput{
			InstanceID: instanceID,
			SeatUID:    req.SeatUIDs[0],
			SessionID:  sessionID,
			TTL:        req.TTL(),
		})
		if err != nil {
			respondInventoryError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resdto.FromHoldResult(result))
		return
	}

	results, err := h.inventory.HoldGroup(c.Request.Context(), commands.HoldGroupInput{
		InstanceID: instanceID,
		SeatUIDs:   req.SeatUIDs,
		SessionID:  sessionID,
		TTL:        req.TTL(),
	})
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromHoldResults(results))
}

// @Summary Extend hold
// @Description Push the expiry of the session's own hold forward
// @Tags holds
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param seatUid path string true "Seat UID"
// @Param request body reqdto.ExtendHoldRequest true "New TTL"
// @Success 200 {object} resdto.HoldResponse
// @Failure 403 {object} httperr.Response
// @Failure 410 {object} httperr.Response
// @Router /instances/{id}/holds/{seatUid} [patch]
func (h *InventoryHandler) ExtendHold(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req reqdto.ExtendHoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request format")
		return
	}

	result, err := h.inventory.Extend(c.Request.Context(), commands.ExtendInput{
		InstanceID: instanceID,
		SeatUID:    c.Param("seatUid"),
		SessionID:  middleware.GetSessionID(c),
		TTL:        req.TTL(),
	})
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromHoldResult(result))
}

// @Summary Release hold
// @Description Give the seat back; releasing a seat the session does not hold is a no-op
// @Tags holds
// @Produce json
// @Param id path string true "Instance ID"
// @Param seatUid path string true "Seat UID"
// @Success 204
// @Failure 403 {object} httperr.Response
// @Router /instances/{id}/holds/{seatUid} [delete]
func (h *InventoryHandler) ReleaseHold(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	err := h.inventory.Release(c.Request.Context(), commands.ReleaseInput{
		InstanceID: instanceID,
		SeatUID:    c.Param("seatUid"),
		SessionID:  middleware.GetSessionID(c),
	})
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Confirm seat
// @Description Convert the session's live hold into a sale tagged with an order reference
// @Tags holds
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param seatUid path string true "Seat UID"
// @Param request body reqdto.ConfirmSeatRequest true "Order reference"
// @Success 200 {object} resdto.ConfirmResponse
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 410 {object} httperr.Response
// @Router /instances/{id}/holds/{seatUid}/confirm [post]
func (h *InventoryHandler) ConfirmSeat(c *gin.Context) {
	instanceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req reqdto.ConfirmSeatRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request format")
		return
	}

	result, err := h.inventory.Confirm(c.Request.Context(), commands.ConfirmInput{
		InstanceID: instanceID,
		SeatUID:    c.Param("seatUid"),
		SessionID:  middleware.GetSessionID(c),
		OrderRef:   req.OrderRef,
	})
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromConfirmResult(result))
}

func respondInventoryError(c *gin.Context, err error) {
	var groupErr *commands.HoldGroupFailedError
	if errors.As(err, &groupErr) {
		status, msg := inventoryErrorStatus(groupErr.Cause)
		httperr.AbortWithError(c, status, err, msg, gin.H{"seat_uid": groupErr.SeatUID})
		return
	}
	status, msg := inventoryErrorStatus(err)
	httperr.AbortWithError(c, status, err, msg, nil)
}

func inventoryErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, commands.ErrSeatNotFound):
		return http.StatusNotFound, "Seat not found"
	case errors.Is(err, commands.ErrInstanceNotFound):
		return http.StatusNotFound, "Seating instance not found"
	case errors.Is(err, seating.ErrSeatUnavailable):
		return http.StatusConflict, "Seat is not available"
	case errors.Is(err, seating.ErrSeatAlreadySold):
		return http.StatusConflict, "Seat is already sold"
	case errors.Is(err, commands.ErrVersionConflict):
		return http.StatusConflict, "Seat was modified concurrently"
	case errors.Is(err, seating.ErrHoldNotOwned):
		return http.StatusForbidden, "Hold belongs to another session"
	case errors.Is(err, seating.ErrHoldExpired):
		return http.StatusGone, "Hold has expired"
	case errors.Is(err, commands.ErrTooManySeats):
		return http.StatusUnprocessableEntity, "Too many seats in one hold"
	case errors.Is(err, commands.ErrSessionRequired):
		return http.StatusUnauthorized, "Session required"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
