package request

import (
	"seatwise/internal/domain/design"

	"github.com/google/uuid"
)

type CreateDesignRequest struct {
	VenueID      uuid.UUID        `json:"venue_id" binding:"required"`
	Name         string           `json:"name" binding:"required"`
	CanvasWidth  int              `json:"canvas_width" binding:"omitempty,min=0"`
	CanvasHeight int              `json:"canvas_height" binding:"omitempty,min=0"`
	Sections     []design.Section `json:"sections"`
	Publish      bool             `json:"publish"`
}

type AttachDesignRequest struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
}

type MoveSeatsRequest struct {
	SeatUIDs []string `json:"seat_uids" binding:"required,min=1,dive,required"`
}
