package response

import (
	"time"

	"seatwise/internal/usecase/commands"

	"github.com/google/uuid"
)

type HeldSeat struct {
	SeatUID   string    `json:"seat_uid"`
	Version   int32     `json:"version"`
	ExpiresAt time.Time `json:"expires_at"`
}

type HoldResponse struct {
	Seats []HeldSeat `json:"seats"`
}

func FromHoldResults(results []commands.HoldResult) HoldResponse {
	resp := HoldResponse{Seats: make([]HeldSeat, 0, len(results))}
	for _, r := range results {
		resp.Seats = append(resp.Seats, HeldSeat{
			SeatUID:   r.SeatUID,
			Version:   r.Version,
			ExpiresAt: r.ExpiresAt,
		})
	}
	return resp
}

func FromHoldResult(r *commands.HoldResult) HoldResponse {
	return FromHoldResults([]commands.HoldResult{*r})
}

type ConfirmResponse struct {
	SeatUID  string    `json:"seat_uid"`
	Version  int32     `json:"version"`
	OrderRef uuid.UUID `json:"order_ref"`
}

func FromConfirmResult(r *commands.ConfirmResult) ConfirmResponse {
	return ConfirmResponse{
		SeatUID:  r.SeatUID,
		Version:  r.Version,
		OrderRef: r.OrderRef,
	}
}
