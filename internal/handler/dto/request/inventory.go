package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateHoldRequest struct {
	SeatUIDs   []string `json:"seat_uids" binding:"required,min=1,dive,required"`
	TTLSeconds int      `json:"ttl_seconds" binding:"omitempty,min=1"`
}

func (r *CreateHoldRequest) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

type ExtendHoldRequest struct {
	TTLSeconds int `json:"ttl_seconds" binding:"omitempty,min=1"`
}

func (r *ExtendHoldRequest) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

type ConfirmSeatRequest struct {
	OrderRef uuid.UUID `json:"order_ref" binding:"required"`
}
