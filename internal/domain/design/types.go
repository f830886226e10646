package design

import "github.com/google/uuid"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// Section, Row and SeatNode form the authored seating tree. They are plain
// serializable data: the designer edits them as a unit and the store keeps
// them as a single JSON document on the design row.
type Section struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

type Row struct {
	Label string     `json:"label"`
	Seats []SeatNode `json:"seats"`
}

type SeatNode struct {
	// UID is the stable seat identifier. It survives design edits and is
	// the key every per-event seat row derives its identity from.
	UID      string     `json:"uid"`
	Number   string     `json:"number"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Unusable bool       `json:"unusable,omitempty"`
	TierID   *uuid.UUID `json:"tier_id,omitempty"`
}
