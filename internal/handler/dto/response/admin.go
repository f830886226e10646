package response

import (
	"seatwise/internal/usecase/commands"

	"github.com/google/uuid"
)

type DesignCreatedResponse struct {
	DesignID uuid.UUID `json:"design_id"`
}

type InstanceResponse struct {
	InstanceID    uuid.UUID `json:"instance_id"`
	DesignVersion int32     `json:"design_version"`
	SeatCount     int       `json:"seat_count"`
}

func FromAttachResult(r *commands.AttachDesignResult) InstanceResponse {
	return InstanceResponse{
		InstanceID:    r.InstanceID,
		DesignVersion: r.DesignVersion,
		SeatCount:     r.SeatCount,
	}
}

type SeatCountResponse struct {
	Count int64 `json:"count"`
}
