package commands

import (
	"context"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/pkg/clock"
	"seatwise/internal/pkg/errs"
	"seatwise/internal/usecase/shared"

	"github.com/google/uuid"
)

type AttachDesignInput struct {
	EventID  uuid.UUID
	DesignID uuid.UUID
}

type AttachDesignResult struct {
	InstanceID    uuid.UUID
	DesignVersion int32
	SeatCount     int
}

type BlockSeatsInput struct {
	InstanceID uuid.UUID
	SeatUIDs   []string
}

// Instances covers the operator-facing lifecycle of event seating: attaching
// a design to an event, materializing seat inventory, refreshing the frozen
// geometry, and the block/unblock overlay.
type Instances struct {
	uow shared.UnitOfWork
	clk clock.Clock
}

func NewInstances(uow shared.UnitOfWork, clk clock.Clock) *Instances {
	return &Instances{uow: uow, clk: clk}
}

// AttachDesign freezes the design's current published revision into a new
// seating instance for the event. The snapshot is deep-copied: edits to the
// design after this point never reach the instance.
func (c *Instances) AttachDesign(ctx context.Context, in AttachDesignInput) (*AttachDesignResult, error) {
	now := c.clk.Now()

	var result *AttachDesignResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		d, err := tx.Designs().Find(ctx, in.DesignID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrDesignNotFound
			}
			return errs.Mark(err, ErrStorageFailure)
		}
		tree, err := design.Snapshot(d)
		if err != nil {
			return err
		}
		instance := seating.NewInstance(in.EventID, tree, now)
		if err := tx.Instances().Insert(ctx, instance); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrInstanceExists
			}
			return errs.Mark(err, ErrStorageFailure)
		}
		result = &AttachDesignResult{
			InstanceID:    instance.ID(),
			DesignVersion: instance.DesignVersion(),
			SeatCount:     tree.SeatCount(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// InitializeSeats materializes one seat row per geometry node, all at version
// 1, available unless the node is marked unusable. Calling it again for an
// instance that already has inventory is a no-op returning 0.
func (c *Instances) InitializeSeats(ctx context.Context, instanceID uuid.UUID) (int64, error) {
	var created int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created = 0
		instance, err := findInstance(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		existing, err := tx.Seats().CountByInstance(ctx, instanceID)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if existing > 0 {
			return nil
		}
		tree := instance.Geometry()
		if tree == nil || tree.SeatCount() == 0 {
			return ErrEmptyGeometry
		}

		seats := make([]*seating.Seat, 0, tree.SeatCount())
		tree.Seats(func(sec design.Section, row design.Row, node design.SeatNode) {
			seats = append(seats, seating.NewSeatFromNode(instanceID, sec, row, node))
		})
		created, err = tx.Seats().InsertBulk(ctx, seats)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// Resnapshot rebuilds the instance's geometry from the design's current
// published revision. Seat inventory is untouched: seats keep their status
// and version through the stable seat uid.
func (c *Instances) Resnapshot(ctx context.Context, instanceID uuid.UUID) (*AttachDesignResult, error) {
	var result *AttachDesignResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		instance, err := findInstance(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		d, err := tx.Designs().Find(ctx, instance.DesignID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrDesignNotFound
			}
			return errs.Mark(err, ErrStorageFailure)
		}
		tree, err := design.Snapshot(d)
		if err != nil {
			return err
		}
		if err := instance.Resnapshot(tree); err != nil {
			return err
		}
		if err := tx.Instances().UpdateGeometry(ctx, instanceID, tree); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		result = &AttachDesignResult{
			InstanceID:    instanceID,
			DesignVersion: tree.DesignVersion,
			SeatCount:     tree.SeatCount(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Archive retires the instance once its event is over. Archiving twice is
// rejected; everything else about the instance is left as is.
func (c *Instances) Archive(ctx context.Context, instanceID uuid.UUID) error {
	now := c.clk.Now()
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		instance, err := findInstance(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		if err := instance.Archive(now); err != nil {
			return err
		}
		if err := tx.Instances().SetArchived(ctx, instanceID, now); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		return nil
	})
}

// BlockSeats moves the listed seats from available to blocked. Seats in any
// other state are left alone; the count of seats actually blocked is
// returned.
func (c *Instances) BlockSeats(ctx context.Context, in BlockSeatsInput) (int64, error) {
	return c.moveSeats(ctx, in, seating.StatusAvailable, seating.StatusBlocked, TopicSeatsBlocked)
}

// UnblockSeats is the inverse overlay transition, blocked back to available.
func (c *Instances) UnblockSeats(ctx context.Context, in BlockSeatsInput) (int64, error) {
	return c.moveSeats(ctx, in, seating.StatusBlocked, seating.StatusAvailable, TopicSeatsUnblocked)
}

func (c *Instances) moveSeats(ctx context.Context, in BlockSeatsInput, from, to seating.SeatStatus, topic string) (int64, error) {
	if len(in.SeatUIDs) == 0 {
		return 0, nil
	}
	now := c.clk.Now()

	var moved int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		moved = 0
		if _, err := findInstance(ctx, tx, in.InstanceID); err != nil {
			return err
		}
		var err error
		moved, err = tx.Seats().UpdateStatusWhere(ctx, in.InstanceID, in.SeatUIDs, from, to)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if moved > 0 {
			return enqueueSeatEvent(ctx, tx, topic, in.InstanceID, in.SeatUIDs, "", now)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

func findInstance(ctx context.Context, tx shared.Tx, id uuid.UUID) (*seating.Instance, error) {
	instance, err := tx.Instances().Find(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}
	return instance, nil
}
