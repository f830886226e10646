package seating

import (
	"errors"
	"time"

	"seatwise/internal/domain/design"

	"github.com/google/uuid"
)

var (
	ErrSeatUnavailable   = errors.New("seat unavailable")
	ErrSeatAlreadySold   = errors.New("seat already sold")
	ErrHoldNotOwned      = errors.New("hold owned by another session")
	ErrHoldExpired       = errors.New("hold expired")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Instance binds one seating design, at a specific frozen version, to one
// event. The geometry snapshot is immutable after creation; Resnapshot is the
// only sanctioned way to replace it and is an explicit operator action.
type Instance struct {
	id            uuid.UUID
	eventID       uuid.UUID
	designID      uuid.UUID
	designVersion int32
	geometry      *design.GeometryTree
	status        InstanceStatus
	publishedAt   *time.Time
	archivedAt    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewInstance(eventID uuid.UUID, geometry *design.GeometryTree, now time.Time) *Instance {
	published := now
	return &Instance{
		id:            uuid.New(),
		eventID:       eventID,
		designID:      geometry.DesignID,
		designVersion: geometry.DesignVersion,
		geometry:      geometry,
		status:        InstancePublished,
		publishedAt:   &published,
	}
}

func ReconstructInstance(
	id, eventID, designID uuid.UUID,
	designVersion int32,
	geometry *design.GeometryTree,
	status InstanceStatus,
	publishedAt, archivedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Instance {
	return &Instance{
		id:            id,
		eventID:       eventID,
		designID:      designID,
		designVersion: designVersion,
		geometry:      geometry,
		status:        status,
		publishedAt:   publishedAt,
		archivedAt:    archivedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Resnapshot swaps in a freshly built geometry tree. Seat inventory is not
// touched: seats keep their identity through the stable seat uid. Archived
// instances are frozen for good.
func (i *Instance) Resnapshot(geometry *design.GeometryTree) error {
	if i.status == InstanceArchived {
		return ErrInvalidTransition
	}
	i.geometry = geometry
	i.designVersion = geometry.DesignVersion
	return nil
}

// Archive retires the instance once the event is over. Terminal.
func (i *Instance) Archive(now time.Time) error {
	if i.status == InstanceArchived {
		return ErrInvalidTransition
	}
	i.status = InstanceArchived
	i.archivedAt = &now
	return nil
}

func (i *Instance) ID() uuid.UUID                   { return i.id }
func (i *Instance) EventID() uuid.UUID              { return i.eventID }
func (i *Instance) DesignID() uuid.UUID             { return i.designID }
func (i *Instance) DesignVersion() int32            { return i.designVersion }
func (i *Instance) Geometry() *design.GeometryTree  { return i.geometry }
func (i *Instance) Status() InstanceStatus          { return i.status }
func (i *Instance) PublishedAt() *time.Time         { return i.publishedAt }
func (i *Instance) ArchivedAt() *time.Time          { return i.archivedAt }
func (i *Instance) CreatedAt() time.Time            { return i.createdAt }
func (i *Instance) UpdatedAt() time.Time            { return i.updatedAt }

// Seat is one physical seat within one event seating instance. Its version
// is the optimistic-concurrency token: every status change increments it by
// exactly 1, and writers condition their update on the version they read.
type Seat struct {
	instanceID    uuid.UUID
	uid           string
	sectionCode   string
	rowLabel      string
	number        string
	priceTierID   *uuid.UUID
	priceOverride *int32
	status        SeatStatus
	version       int32
	orderRef      *uuid.UUID
	updatedAt     time.Time
}

// NewSeatFromNode builds the initial inventory row for one geometry seat
// node. Seats start at version 1; unusable nodes become disabled seats.
func NewSeatFromNode(instanceID uuid.UUID, sec design.Section, row design.Row, node design.SeatNode) *Seat {
	status := StatusAvailable
	if node.Unusable {
		status = StatusDisabled
	}
	return &Seat{
		instanceID:  instanceID,
		uid:         node.UID,
		sectionCode: sec.Code,
		rowLabel:    row.Label,
		number:      node.Number,
		priceTierID: node.TierID,
		status:      status,
		version:     1,
	}
}

func ReconstructSeat(
	instanceID uuid.UUID,
	uid, sectionCode, rowLabel, number string,
	priceTierID *uuid.UUID,
	priceOverride *int32,
	status SeatStatus,
	version int32,
	orderRef *uuid.UUID,
	updatedAt time.Time,
) *Seat {
	return &Seat{
		instanceID:    instanceID,
		uid:           uid,
		sectionCode:   sectionCode,
		rowLabel:      rowLabel,
		number:        number,
		priceTierID:   priceTierID,
		priceOverride: priceOverride,
		status:        status,
		version:       version,
		orderRef:      orderRef,
		updatedAt:     updatedAt,
	}
}

// CheckHoldable reports whether the seat can be claimed right now given the
// hold currently on record (nil when none). A seat under an expired hold is
// holdable after an inline reclaim; the caller performs that transition.
func (s *Seat) CheckHoldable(h *Hold, now time.Time) error {
	switch s.status {
	case StatusAvailable:
		return nil
	case StatusHeld:
		if h != nil && !h.ExpiredAt(now) {
			return ErrSeatUnavailable
		}
		// Expired or orphaned hold: reclaimable.
		return nil
	case StatusSold:
		return ErrSeatAlreadySold
	default:
		return ErrSeatUnavailable
	}
}

// CheckConfirmable validates a confirm against the recorded hold. Repeat
// confirms with the orderRef already on the seat are accepted so order
// finalization can retry.
func (s *Seat) CheckConfirmable(h *Hold, sessionID string, orderRef uuid.UUID, now time.Time) error {
	if s.status == StatusSold {
		if s.orderRef != nil && *s.orderRef == orderRef {
			return nil
		}
		return ErrSeatAlreadySold
	}
	if h == nil {
		return ErrHoldExpired
	}
	if h.SessionID() != sessionID {
		return ErrHoldNotOwned
	}
	if h.ExpiredAt(now) {
		return ErrHoldExpired
	}
	return nil
}

func (s *Seat) IsSoldWith(orderRef uuid.UUID) bool {
	return s.status == StatusSold && s.orderRef != nil && *s.orderRef == orderRef
}

func (s *Seat) InstanceID() uuid.UUID    { return s.instanceID }
func (s *Seat) UID() string              { return s.uid }
func (s *Seat) SectionCode() string      { return s.sectionCode }
func (s *Seat) RowLabel() string         { return s.rowLabel }
func (s *Seat) Number() string           { return s.number }
func (s *Seat) PriceTierID() *uuid.UUID  { return s.priceTierID }
func (s *Seat) PriceOverride() *int32    { return s.priceOverride }
func (s *Seat) Status() SeatStatus       { return s.status }
func (s *Seat) Version() int32           { return s.version }
func (s *Seat) OrderRef() *uuid.UUID     { return s.orderRef }
func (s *Seat) UpdatedAt() time.Time     { return s.updatedAt }

// Hold is a time-bounded exclusive claim on one seat by one session.
type Hold struct {
	instanceID uuid.UUID
	seatUID    string
	sessionID  string
	expiresAt  time.Time
	createdAt  time.Time
}

func NewHold(instanceID uuid.UUID, seatUID, sessionID string, expiresAt time.Time) *Hold {
	return &Hold{
		instanceID: instanceID,
		seatUID:    seatUID,
		sessionID:  sessionID,
		expiresAt:  expiresAt,
	}
}

func ReconstructHold(instanceID uuid.UUID, seatUID, sessionID string, expiresAt, createdAt time.Time) *Hold {
	return &Hold{
		instanceID: instanceID,
		seatUID:    seatUID,
		sessionID:  sessionID,
		expiresAt:  expiresAt,
		createdAt:  createdAt,
	}
}

func (h *Hold) ExpiredAt(now time.Time) bool {
	return !h.expiresAt.After(now)
}

func (h *Hold) OwnedBy(sessionID string) bool {
	return h.sessionID == sessionID
}

func (h *Hold) InstanceID() uuid.UUID { return h.instanceID }
func (h *Hold) SeatUID() string       { return h.seatUID }
func (h *Hold) SessionID() string     { return h.sessionID }
func (h *Hold) ExpiresAt() time.Time  { return h.expiresAt }
func (h *Hold) CreatedAt() time.Time  { return h.createdAt }
