package queries

import (
	"context"
	"time"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/pkg/clock"
	"seatwise/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInstanceNotFound = errs.New("event seating instance not found")
	ErrStorageFailure   = errs.New("storage operation failed")
)

// Availability is the classification shown to a browsing session. It folds
// hold expiry at read time: a seat whose only hold has lapsed reads as
// available even before the sweeper reclaims it.
type Availability string

const (
	SeatAvailable   Availability = "available"
	SeatHeldByMe    Availability = "held_by_me"
	SeatHeldByOther Availability = "held_by_other"
	SeatSold        Availability = "sold"
	SeatBlocked     Availability = "blocked"
	SeatDisabled    Availability = "disabled"
)

// SeatRecord is the flat row shape the read store returns, one per seat,
// with the hold columns joined in when a hold row exists.
type SeatRecord struct {
	UID                string
	SectionCode        string
	RowLabel           string
	Number             string
	PriceTierID        *uuid.UUID
	PriceOverrideCents *int32
	Status             seating.SeatStatus
	Version            int32
	HoldSessionID      *string
	HoldExpiresAt      *time.Time
}

// SeatMapReadStore is the query-side port. Implementations may serve from a
// short-lived cache; hold expiry is always folded here, after the fetch, so
// cached rows never pin a stale classification.
type SeatMapReadStore interface {
	InstanceGeometry(ctx context.Context, instanceID uuid.UUID) (*design.GeometryTree, error)
	SeatRecords(ctx context.Context, instanceID uuid.UUID) ([]SeatRecord, error)
}

type SeatView struct {
	UID                string       `json:"uid"`
	Number             string       `json:"number"`
	X                  float64      `json:"x"`
	Y                  float64      `json:"y"`
	Availability       Availability `json:"availability"`
	Version            int32        `json:"version"`
	PriceTierID        *uuid.UUID   `json:"price_tier_id,omitempty"`
	PriceOverrideCents *int32       `json:"price_override_cents,omitempty"`
}

type RowView struct {
	Label string     `json:"label"`
	Seats []SeatView `json:"seats"`
}

type SectionView struct {
	Code string    `json:"code"`
	Name string    `json:"name"`
	Rows []RowView `json:"rows"`
}

type SeatMapView struct {
	InstanceID    uuid.UUID     `json:"instance_id"`
	DesignVersion int32         `json:"design_version"`
	CanvasWidth   int           `json:"canvas_width"`
	CanvasHeight  int           `json:"canvas_height"`
	Sections      []SectionView `json:"sections"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// SeatMap renders the full seat map for one instance, classified for the
// requesting session. It is a pure read: no write side effects, ever.
// The frozen geometry drives the walk, so an inventory row whose seat node
// was removed by a later re-snapshot is not rendered, whatever its status;
// such rows stay in the store and keep their sale or hold state.
type SeatMap struct {
	store SeatMapReadStore
	clk   clock.Clock
}

func NewSeatMap(store SeatMapReadStore, clk clock.Clock) *SeatMap {
	return &SeatMap{store: store, clk: clk}
}

func (q *SeatMap) Get(ctx context.Context, instanceID uuid.UUID, sessionID string) (*SeatMapView, error) {
	tree, err := q.store.InstanceGeometry(ctx, instanceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}
	records, err := q.store.SeatRecords(ctx, instanceID)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	byUID := make(map[string]SeatRecord, len(records))
	for _, r := range records {
		byUID[r.UID] = r
	}
	now := q.clk.Now()

	view := &SeatMapView{
		InstanceID:    instanceID,
		DesignVersion: tree.DesignVersion,
		CanvasWidth:   tree.CanvasWidth,
		CanvasHeight:  tree.CanvasHeight,
		GeneratedAt:   now,
	}
	for _, sec := range tree.Sections {
		secView := SectionView{Code: sec.Code, Name: sec.Name}
		for _, row := range sec.Rows {
			rowView := RowView{Label: row.Label}
			for _, node := range row.Seats {
				rowView.Seats = append(rowView.Seats, buildSeatView(node, byUID, sessionID, now))
			}
			secView.Rows = append(secView.Rows, rowView)
		}
		view.Sections = append(view.Sections, secView)
	}
	return view, nil
}

func buildSeatView(node design.SeatNode, byUID map[string]SeatRecord, sessionID string, now time.Time) SeatView {
	v := SeatView{
		UID:    node.UID,
		Number: node.Number,
		X:      node.X,
		Y:      node.Y,
	}
	r, ok := byUID[node.UID]
	if !ok {
		// Geometry node without an inventory row: re-snapshot added the seat
		// after initialization. Shown but not claimable.
		v.Availability = SeatDisabled
		return v
	}
	v.Version = r.Version
	v.PriceTierID = r.PriceTierID
	v.PriceOverrideCents = r.PriceOverrideCents
	v.Availability = classify(r, sessionID, now)
	return v
}

func classify(r SeatRecord, sessionID string, now time.Time) Availability {
	switch r.Status {
	case seating.StatusDisabled:
		return SeatDisabled
	case seating.StatusBlocked:
		return SeatBlocked
	case seating.StatusSold:
		return SeatSold
	case seating.StatusHeld:
		if r.HoldExpiresAt == nil || !r.HoldExpiresAt.After(now) {
			// Expired or orphaned hold reads as available until reclaimed.
			return SeatAvailable
		}
		if r.HoldSessionID != nil && sessionID != "" && *r.HoldSessionID == sessionID {
			return SeatHeldByMe
		}
		return SeatHeldByOther
	default:
		return SeatAvailable
	}
}
