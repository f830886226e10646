package design

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName      = errors.New("design name cannot be empty")
	ErrInvalidStatus  = errors.New("invalid design status")
	ErrNotDraft       = errors.New("only draft designs can be edited")
	ErrAlreadyRetired = errors.New("design is archived")
)

// SeatingDesign is the reusable venue template. It is mutable only through
// its own methods, and every structural edit bumps the design version so a
// frozen event instance can record exactly which revision it was built from.
type SeatingDesign struct {
	id           uuid.UUID
	venueID      uuid.UUID
	name         string
	canvasWidth  int
	canvasHeight int
	version      int32
	status       Status
	sections     []Section
	createdAt    time.Time
	updatedAt    time.Time
}

func NewSeatingDesign(venueID uuid.UUID, name string, canvasWidth, canvasHeight int) (*SeatingDesign, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &SeatingDesign{
		id:           uuid.New(),
		venueID:      venueID,
		name:         name,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
		version:      1,
		status:       StatusDraft,
	}, nil
}

func ReconstructSeatingDesign(
	id, venueID uuid.UUID,
	name string,
	canvasWidth, canvasHeight int,
	version int32,
	status Status,
	sections []Section,
	createdAt, updatedAt time.Time,
) *SeatingDesign {
	return &SeatingDesign{
		id:           id,
		venueID:      venueID,
		name:         name,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
		version:      version,
		status:       status,
		sections:     sections,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ReplaceSections swaps the authored tree and bumps the design version.
// Published designs stay untouched: publishing a new revision is an explicit
// author action, so events built against the old revision never shift.
func (d *SeatingDesign) ReplaceSections(sections []Section) error {
	if d.status == StatusArchived {
		return ErrAlreadyRetired
	}
	d.sections = sections
	d.version++
	return nil
}

func (d *SeatingDesign) Publish() error {
	if d.status == StatusArchived {
		return ErrAlreadyRetired
	}
	d.status = StatusPublished
	return nil
}

func (d *SeatingDesign) Archive() {
	d.status = StatusArchived
}

func (d *SeatingDesign) IsPublished() bool {
	return d.status == StatusPublished
}

func (d *SeatingDesign) SeatCount() int {
	n := 0
	for _, sec := range d.sections {
		for _, row := range sec.Rows {
			n += len(row.Seats)
		}
	}
	return n
}

func (d *SeatingDesign) ID() uuid.UUID        { return d.id }
func (d *SeatingDesign) VenueID() uuid.UUID   { return d.venueID }
func (d *SeatingDesign) Name() string         { return d.name }
func (d *SeatingDesign) CanvasWidth() int     { return d.canvasWidth }
func (d *SeatingDesign) CanvasHeight() int    { return d.canvasHeight }
func (d *SeatingDesign) Version() int32       { return d.version }
func (d *SeatingDesign) Status() Status       { return d.status }
func (d *SeatingDesign) Sections() []Section  { return d.sections }
func (d *SeatingDesign) CreatedAt() time.Time { return d.createdAt }
func (d *SeatingDesign) UpdatedAt() time.Time { return d.updatedAt }
