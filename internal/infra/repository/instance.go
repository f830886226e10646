package repository

import (
	"context"
	"encoding/json"
	"time"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/infra/db"
	"seatwise/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type InstanceRepository struct {
	db db.DBTX
}

func NewInstanceRepository(dbtx db.DBTX) *InstanceRepository {
	return &InstanceRepository{db: dbtx}
}

func (r *InstanceRepository) Find(ctx context.Context, id uuid.UUID) (*seating.Instance, error) {
	var (
		eventID       uuid.UUID
		designID      uuid.UUID
		designVersion int32
		geometryJSON  []byte
		status        string
		publishedAt   pgtype.Timestamptz
		archivedAt    pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
		SELECT event_id, design_id, design_version, geometry, status,
		       published_at, archived_at, created_at, updated_at
		FROM event_seating_instances
		WHERE id = $1`,
		id,
	).Scan(&eventID, &designID, &designVersion, &geometryJSON, &status,
		&publishedAt, &archivedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, classifyErr("failed to find instance", err)
	}

	var tree design.GeometryTree
	if err := json.Unmarshal(geometryJSON, &tree); err != nil {
		return nil, infra.WrapRepoErr("failed to decode instance geometry", err)
	}
	return seating.ReconstructInstance(
		id, eventID, designID, designVersion, &tree,
		seating.InstanceStatus(status),
		pgconv.TimePtrFromPgtype(publishedAt),
		pgconv.TimePtrFromPgtype(archivedAt),
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}

func (r *InstanceRepository) Insert(ctx context.Context, instance *seating.Instance) error {
	geometryJSON, err := json.Marshal(instance.Geometry())
	if err != nil {
		return infra.WrapRepoErr("failed to encode instance geometry", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO event_seating_instances (
			id, event_id, design_id, design_version, geometry, status, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		instance.ID(), instance.EventID(), instance.DesignID(), instance.DesignVersion(),
		geometryJSON, string(instance.Status()), pgconv.TimePtrToPgtype(instance.PublishedAt()),
	)
	if err != nil {
		return classifyErr("failed to insert instance", err)
	}
	return nil
}

func (r *InstanceRepository) UpdateGeometry(ctx context.Context, id uuid.UUID, geometry *design.GeometryTree) error {
	geometryJSON, err := json.Marshal(geometry)
	if err != nil {
		return infra.WrapRepoErr("failed to encode instance geometry", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE event_seating_instances
		SET geometry = $2, design_version = $3, updated_at = now()
		WHERE id = $1`,
		id, geometryJSON, geometry.DesignVersion,
	)
	if err != nil {
		return classifyErr("failed to update instance geometry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("instance not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *InstanceRepository) SetArchived(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE event_seating_instances
		SET status = $2, archived_at = $3, updated_at = now()
		WHERE id = $1`,
		id, string(seating.InstanceArchived), pgconv.TimeToPgtype(at),
	)
	if err != nil {
		return classifyErr("failed to archive instance", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("instance not found", nil, infra.KindNotFound)
	}
	return nil
}
