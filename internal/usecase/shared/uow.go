package shared

import (
	"context"
	"time"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"

	"github.com/google/uuid"
)

// UnitOfWork hides the transactional store behind the coordinator. Within
// runs fn inside one ReadCommitted transaction with retry on serialization
// failures; everything fn touches through tx commits or rolls back as a unit.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Seats() SeatRepository
	Holds() HoldRepository
	Instances() InstanceRepository
	Designs() DesignRepository
	Notifications() NotificationRepository
}

type SeatRepository interface {
	Find(ctx context.Context, instanceID uuid.UUID, seatUID string) (*seating.Seat, error)
	InsertBulk(ctx context.Context, seats []*seating.Seat) (int64, error)
	CountByInstance(ctx context.Context, instanceID uuid.UUID) (int64, error)
	// UpdateStatusCAS performs the conditional status write: it succeeds only
	// when the stored version still equals expectedVersion, and increments the
	// version by 1. Returns the number of rows affected (0 or 1).
	UpdateStatusCAS(ctx context.Context, instanceID uuid.UUID, seatUID string, expectedVersion int32, status seating.SeatStatus, orderRef *uuid.UUID) (int64, error)
	// UpdateStatusWhere moves every seat of the instance currently in `from`
	// (restricted to seatUIDs when non-empty) to `to`, incrementing each
	// seat's version. Used by the operator block/unblock overlay.
	UpdateStatusWhere(ctx context.Context, instanceID uuid.UUID, seatUIDs []string, from, to seating.SeatStatus) (int64, error)
}

type HoldRepository interface {
	// Find returns (nil, nil) when the seat has no hold on record; a missing
	// hold is a normal state, not an error.
	Find(ctx context.Context, instanceID uuid.UUID, seatUID string) (*seating.Hold, error)
	Insert(ctx context.Context, hold *seating.Hold) error
	// Delete removes the hold for the seat when owned by sessionID (any
	// session when sessionID is empty). Returns rows affected.
	Delete(ctx context.Context, instanceID uuid.UUID, seatUID string, sessionID string) (int64, error)
	// ExtendExpiry pushes expires_at forward for a live hold owned by
	// sessionID. A hold already past `now` is not touched.
	ExtendExpiry(ctx context.Context, instanceID uuid.UUID, seatUID, sessionID string, expiresAt, now time.Time) (int64, error)
	ListExpired(ctx context.Context, instanceID uuid.UUID, now time.Time, limit int) ([]*seating.Hold, error)
	// ListInstancesWithExpired feeds the background sweeper: distinct instance
	// ids that currently carry at least one expired hold.
	ListInstancesWithExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type InstanceRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*seating.Instance, error)
	Insert(ctx context.Context, instance *seating.Instance) error
	UpdateGeometry(ctx context.Context, id uuid.UUID, geometry *design.GeometryTree) error
	SetArchived(ctx context.Context, id uuid.UUID, at time.Time) error
}

type DesignRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*design.SeatingDesign, error)
	Insert(ctx context.Context, d *design.SeatingDesign) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}
