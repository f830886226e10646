package commands

import (
	"context"

	"seatwise/internal/domain/design"
	"seatwise/internal/pkg/errs"
	"seatwise/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateDesignInput struct {
	VenueID      uuid.UUID
	Name         string
	CanvasWidth  int
	CanvasHeight int
	Sections     []design.Section
	// Publish creates the design already published so it can be attached to
	// an event immediately.
	Publish bool
}

// Designs manages the reusable venue templates the snapshot builder freezes
// from. Only creation is handled here; the authoring surface proper lives in
// a separate editor service.
type Designs struct {
	uow shared.UnitOfWork
}

func NewDesigns(uow shared.UnitOfWork) *Designs {
	return &Designs{uow: uow}
}

func (c *Designs) Create(ctx context.Context, in CreateDesignInput) (uuid.UUID, error) {
	d, err := design.NewSeatingDesign(in.VenueID, in.Name, in.CanvasWidth, in.CanvasHeight)
	if err != nil {
		return uuid.Nil, err
	}
	if len(in.Sections) > 0 {
		if err := d.ReplaceSections(in.Sections); err != nil {
			return uuid.Nil, err
		}
	}
	if in.Publish {
		if err := d.Publish(); err != nil {
			return uuid.Nil, err
		}
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Designs().Insert(ctx, d); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return d.ID(), nil
}
