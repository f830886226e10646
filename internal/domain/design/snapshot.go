package design

import (
	"errors"
	"fmt"

	"seatwise/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var (
	ErrInvalidDesign = errors.New("invalid design")

	errNotPublished    = errs.New("design has no published version")
	errDuplicateSeat   = errs.New("duplicate seat uid in design")
	errMissingSeatUID  = errs.New("seat node without uid")
	errMissingSections = errs.New("design has no sections")
)

// GeometryTree is the immutable, self-contained copy of a design's seating
// tree frozen against one event. It shares no memory with the design it was
// built from, so later edits to the design can never leak into it.
type GeometryTree struct {
	DesignID      uuid.UUID `json:"design_id"`
	DesignVersion int32     `json:"design_version"`
	CanvasWidth   int       `json:"canvas_width"`
	CanvasHeight  int       `json:"canvas_height"`
	Sections      []Section `json:"sections"`
}

func (g *GeometryTree) SeatCount() int {
	n := 0
	for _, sec := range g.Sections {
		for _, row := range sec.Rows {
			n += len(row.Seats)
		}
	}
	return n
}

// Seats walks the tree in authored order. The order is part of the snapshot
// contract: the same design version always yields the same sequence.
func (g *GeometryTree) Seats(visit func(sec Section, row Row, seat SeatNode)) {
	for _, sec := range g.Sections {
		for _, row := range sec.Rows {
			for _, seat := range row.Seats {
				visit(sec, row, seat)
			}
		}
	}
}

// Snapshot freezes a published design into a GeometryTree. It is a pure
// transformation: deterministic for a given design version and without side
// effects. Structural problems (no published version, empty tree, duplicate
// or missing seat uids) fail the whole snapshot with ErrInvalidDesign.
func Snapshot(d *SeatingDesign) (*GeometryTree, error) {
	if !d.IsPublished() {
		return nil, errs.Mark(errNotPublished, ErrInvalidDesign)
	}
	if len(d.Sections()) == 0 {
		return nil, errs.Mark(errMissingSections, ErrInvalidDesign)
	}

	seen := make(map[string]struct{})
	for _, sec := range d.Sections() {
		for _, row := range sec.Rows {
			for _, seat := range row.Seats {
				if seat.UID == "" {
					return nil, errs.Mark(
						errs.Wrap(errMissingSeatUID, fmt.Sprintf("section %q row %q", sec.Code, row.Label)),
						ErrInvalidDesign,
					)
				}
				if _, dup := seen[seat.UID]; dup {
					return nil, errs.Mark(
						errs.Wrap(errDuplicateSeat, fmt.Sprintf("seat uid %q", seat.UID)),
						ErrInvalidDesign,
					)
				}
				seen[seat.UID] = struct{}{}
			}
		}
	}

	var sections []Section
	if err := copier.CopyWithOption(&sections, d.Sections(), copier.Option{DeepCopy: true}); err != nil {
		return nil, errs.Wrap(err, "failed to copy design sections")
	}

	return &GeometryTree{
		DesignID:      d.ID(),
		DesignVersion: d.Version(),
		CanvasWidth:   d.CanvasWidth(),
		CanvasHeight:  d.CanvasHeight(),
		Sections:      sections,
	}, nil
}
