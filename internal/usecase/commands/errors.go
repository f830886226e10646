package commands

import "seatwise/internal/pkg/errs"

// Sentinels for conditions detected at the coordinator layer. The seat state
// machine's own failure modes (unavailable, already sold, hold not owned,
// hold expired) are declared in the seating domain package and surface
// through these commands unchanged.
var (
	ErrSeatNotFound     = errs.New("seat not found")
	ErrInstanceNotFound = errs.New("event seating instance not found")
	ErrDesignNotFound   = errs.New("seating design not found")
	ErrInstanceExists   = errs.New("event already has a seating instance")
	ErrVersionConflict  = errs.New("seat version conflict")
	ErrEmptyGeometry    = errs.New("geometry snapshot contains no seats")
	ErrSessionRequired  = errs.New("session id required")
	ErrTooManySeats     = errs.New("too many seats in hold group")
	ErrStorageFailure   = errs.New("storage operation failed")
)

// HoldGroupFailedError reports which seat broke an all-or-nothing group hold.
type HoldGroupFailedError struct {
	SeatUID string
	Cause   error
}

func (e *HoldGroupFailedError) Error() string {
	return "hold group failed at seat " + e.SeatUID + ": " + e.Cause.Error()
}

func (e *HoldGroupFailedError) Unwrap() error {
	return e.Cause
}
