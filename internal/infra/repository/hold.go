package repository

import (
	"context"
	"time"

	"seatwise/internal/domain/seating"
	"seatwise/internal/infra/db"
	"seatwise/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type HoldRepository struct {
	db db.DBTX
}

func NewHoldRepository(dbtx db.DBTX) *HoldRepository {
	return &HoldRepository{db: dbtx}
}

func (r *HoldRepository) Find(ctx context.Context, instanceID uuid.UUID, seatUID string) (*seating.Hold, error) {
	var (
		sessionID string
		expiresAt pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
		SELECT session_id, expires_at, created_at
		FROM seat_holds
		WHERE event_seating_id = $1 AND seat_uid = $2`,
		instanceID, seatUID,
	).Scan(&sessionID, &expiresAt, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, classifyErr("failed to find hold", err)
	}
	return seating.ReconstructHold(
		instanceID, seatUID, sessionID,
		pgconv.TimeFromPgtype(expiresAt), pgconv.TimeFromPgtype(createdAt),
	), nil
}

func (r *HoldRepository) Insert(ctx context.Context, hold *seating.Hold) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO seat_holds (event_seating_id, seat_uid, session_id, expires_at)
		VALUES ($1, $2, $3, $4)`,
		hold.InstanceID(), hold.SeatUID(), hold.SessionID(), hold.ExpiresAt(),
	)
	if err != nil {
		return classifyErr("failed to insert hold", err)
	}
	return nil
}

func (r *HoldRepository) Delete(ctx context.Context, instanceID uuid.UUID, seatUID string, sessionID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM seat_holds
		WHERE event_seating_id = $1 AND seat_uid = $2
		  AND ($3 = '' OR session_id = $3)`,
		instanceID, seatUID, sessionID,
	)
	if err != nil {
		return 0, classifyErr("failed to delete hold", err)
	}
	return tag.RowsAffected(), nil
}

func (r *HoldRepository) ExtendExpiry(ctx context.Context, instanceID uuid.UUID, seatUID, sessionID string, expiresAt, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE seat_holds
		SET expires_at = $4
		WHERE event_seating_id = $1 AND seat_uid = $2 AND session_id = $3
		  AND expires_at > $5`,
		instanceID, seatUID, sessionID, expiresAt, now,
	)
	if err != nil {
		return 0, classifyErr("failed to extend hold", err)
	}
	return tag.RowsAffected(), nil
}

func (r *HoldRepository) ListExpired(ctx context.Context, instanceID uuid.UUID, now time.Time, limit int) ([]*seating.Hold, error) {
	rows, err := r.db.Query(ctx, `
		SELECT seat_uid, session_id, expires_at, created_at
		FROM seat_holds
		WHERE event_seating_id = $1 AND expires_at <= $2
		ORDER BY expires_at
		LIMIT $3`,
		instanceID, now, limit,
	)
	if err != nil {
		return nil, classifyErr("failed to list expired holds", err)
	}
	defer rows.Close()

	var holds []*seating.Hold
	for rows.Next() {
		var (
			seatUID   string
			sessionID string
			expiresAt pgtype.Timestamptz
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&seatUID, &sessionID, &expiresAt, &createdAt); err != nil {
			return nil, classifyErr("failed to scan expired hold", err)
		}
		holds = append(holds, seating.ReconstructHold(
			instanceID, seatUID, sessionID,
			pgconv.TimeFromPgtype(expiresAt), pgconv.TimeFromPgtype(createdAt),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr("failed to list expired holds", err)
	}
	return holds, nil
}

func (r *HoldRepository) ListInstancesWithExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT event_seating_id
		FROM seat_holds
		WHERE expires_at <= $1
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, classifyErr("failed to list instances with expired holds", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, classifyErr("failed to scan instance id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr("failed to list instances with expired holds", err)
	}
	return ids, nil
}
