package repository

import (
	"context"
	"encoding/json"

	"seatwise/internal/domain/design"
	"seatwise/internal/infra"
	"seatwise/internal/infra/db"
	"seatwise/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DesignRepository struct {
	db db.DBTX
}

func NewDesignRepository(dbtx db.DBTX) *DesignRepository {
	return &DesignRepository{db: dbtx}
}

func (r *DesignRepository) Find(ctx context.Context, id uuid.UUID) (*design.SeatingDesign, error) {
	var (
		venueID      uuid.UUID
		name         string
		canvasWidth  int
		canvasHeight int
		version      int32
		status       string
		sectionsJSON []byte
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
		SELECT venue_id, name, canvas_width, canvas_height, version, status,
		       sections, created_at, updated_at
		FROM seating_designs
		WHERE id = $1`,
		id,
	).Scan(&venueID, &name, &canvasWidth, &canvasHeight, &version, &status,
		&sectionsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, classifyErr("failed to find design", err)
	}

	var sections []design.Section
	if err := json.Unmarshal(sectionsJSON, &sections); err != nil {
		return nil, infra.WrapRepoErr("failed to decode design sections", err)
	}
	return design.ReconstructSeatingDesign(
		id, venueID, name, canvasWidth, canvasHeight, version,
		design.Status(status), sections,
		pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt),
	), nil
}

func (r *DesignRepository) Insert(ctx context.Context, d *design.SeatingDesign) error {
	sectionsJSON, err := json.Marshal(d.Sections())
	if err != nil {
		return infra.WrapRepoErr("failed to encode design sections", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO seating_designs (
			id, venue_id, name, canvas_width, canvas_height, version, status, sections
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID(), d.VenueID(), d.Name(), d.CanvasWidth(), d.CanvasHeight(),
		d.Version(), d.Status().String(), sectionsJSON,
	)
	if err != nil {
		return classifyErr("failed to insert design", err)
	}
	return nil
}
