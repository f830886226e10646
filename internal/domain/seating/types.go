package seating

type SeatStatus string

const (
	// Base machine: available → held → sold, held → available.
	StatusAvailable SeatStatus = "available"
	StatusHeld      SeatStatus = "held"
	StatusSold      SeatStatus = "sold"

	// Operator overlay: available ↔ blocked. Blocked seats never enter the
	// hold/confirm flow.
	StatusBlocked SeatStatus = "blocked"

	// Assigned at initialization for seat nodes the design marks unusable.
	// Terminal.
	StatusDisabled SeatStatus = "disabled"
)

func (s SeatStatus) String() string {
	return string(s)
}

func (s SeatStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusSold, StatusBlocked, StatusDisabled:
		return true
	default:
		return false
	}
}

// CanTransitionTo is the seat state machine. Sold and disabled are terminal;
// refund/cancellation flows live outside the inventory core.
func (s SeatStatus) CanTransitionTo(to SeatStatus) bool {
	switch s {
	case StatusAvailable:
		return to == StatusHeld || to == StatusBlocked
	case StatusHeld:
		return to == StatusAvailable || to == StatusSold
	case StatusBlocked:
		return to == StatusAvailable
	default:
		return false
	}
}

type InstanceStatus string

const (
	InstanceDraft     InstanceStatus = "draft"
	InstancePublished InstanceStatus = "published"
	InstanceArchived  InstanceStatus = "archived"
)

func (s InstanceStatus) String() string {
	return string(s)
}
