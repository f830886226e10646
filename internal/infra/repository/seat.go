package repository

import (
	"context"

	"seatwise/internal/domain/seating"
	"seatwise/internal/infra/db"
	"seatwise/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type SeatRepository struct {
	db db.DBTX
}

func NewSeatRepository(dbtx db.DBTX) *SeatRepository {
	return &SeatRepository{db: dbtx}
}

const seatColumns = `event_seating_id, seat_uid, section_code, row_label, seat_number,
	price_tier_id, price_override_cents, status, version, order_ref, updated_at`

func (r *SeatRepository) Find(ctx context.Context, instanceID uuid.UUID, seatUID string) (*seating.Seat, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+seatColumns+`
		FROM event_seats
		WHERE event_seating_id = $1 AND seat_uid = $2`,
		instanceID, seatUID,
	)
	seat, err := scanSeat(row)
	if err != nil {
		return nil, classifyErr("failed to find seat", err)
	}
	return seat, nil
}

func (r *SeatRepository) InsertBulk(ctx context.Context, seats []*seating.Seat) (int64, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, s := range seats {
		batch.Queue(`
			INSERT INTO event_seats (
				event_seating_id, seat_uid, section_code, row_label, seat_number,
				price_tier_id, price_override_cents, status, version
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.InstanceID(), s.UID(), s.SectionCode(), s.RowLabel(), s.Number(),
			pgconv.UUIDPtrToPgtype(s.PriceTierID()), pgconv.Int32PtrToPgtype(s.PriceOverride()),
			string(s.Status()), s.Version(),
		)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range seats {
		tag, err := results.Exec()
		if err != nil {
			return 0, classifyErr("failed to insert seats", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

func (r *SeatRepository) CountByInstance(ctx context.Context, instanceID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM event_seats WHERE event_seating_id = $1`,
		instanceID,
	).Scan(&n)
	if err != nil {
		return 0, classifyErr("failed to count seats", err)
	}
	return n, nil
}

func (r *SeatRepository) UpdateStatusCAS(
	ctx context.Context,
	instanceID uuid.UUID,
	seatUID string,
	expectedVersion int32,
	status seating.SeatStatus,
	orderRef *uuid.UUID,
) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE event_seats
		SET status = $4, order_ref = $5, version = version + 1, updated_at = now()
		WHERE event_seating_id = $1 AND seat_uid = $2 AND version = $3`,
		instanceID, seatUID, expectedVersion, string(status), pgconv.UUIDPtrToPgtype(orderRef),
	)
	if err != nil {
		return 0, classifyErr("failed to update seat status", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SeatRepository) UpdateStatusWhere(
	ctx context.Context,
	instanceID uuid.UUID,
	seatUIDs []string,
	from, to seating.SeatStatus,
) (int64, error) {
	// A nil slice binds as SQL NULL, not as an empty array, so both spellings
	// of "no filter" need a branch.
	tag, err := r.db.Exec(ctx, `
		UPDATE event_seats
		SET status = $4, version = version + 1, updated_at = now()
		WHERE event_seating_id = $1 AND status = $3
		  AND ($2::text[] IS NULL OR cardinality($2::text[]) = 0 OR seat_uid = ANY($2))`,
		instanceID, seatUIDs, string(from), string(to),
	)
	if err != nil {
		return 0, classifyErr("failed to move seats", err)
	}
	return tag.RowsAffected(), nil
}

func scanSeat(row pgx.Row) (*seating.Seat, error) {
	var (
		instanceID    uuid.UUID
		uid           string
		sectionCode   string
		rowLabel      string
		number        string
		priceTierID   pgtype.UUID
		priceOverride pgtype.Int4
		status        string
		version       int32
		orderRef      pgtype.UUID
		updatedAt     pgtype.Timestamptz
	)
	err := row.Scan(
		&instanceID, &uid, &sectionCode, &rowLabel, &number,
		&priceTierID, &priceOverride, &status, &version, &orderRef, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return seating.ReconstructSeat(
		instanceID, uid, sectionCode, rowLabel, number,
		pgconv.UUIDPtrFromPgtype(priceTierID),
		pgconv.Int32PtrFromPgtype(priceOverride),
		seating.SeatStatus(status),
		version,
		pgconv.UUIDPtrFromPgtype(orderRef),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}
