package readstore

import (
	"context"
	"encoding/json"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/infra/db"
	"seatwise/internal/pkg/pgconv"
	"seatwise/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// SeatMapReadStore serves the seat-map query directly from postgres. It only
// reads; classification happens above it in the query layer.
type SeatMapReadStore struct {
	db db.DBTX
}

func NewSeatMapReadStore(dbtx db.DBTX) *SeatMapReadStore {
	return &SeatMapReadStore{db: dbtx}
}

func (s *SeatMapReadStore) InstanceGeometry(ctx context.Context, instanceID uuid.UUID) (*design.GeometryTree, error) {
	var geometryJSON []byte
	err := s.db.QueryRow(ctx, `
		SELECT geometry
		FROM event_seating_instances
		WHERE id = $1 AND status <> 'archived'`,
		instanceID,
	).Scan(&geometryJSON)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("instance not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load instance geometry", err)
	}

	var tree design.GeometryTree
	if err := json.Unmarshal(geometryJSON, &tree); err != nil {
		return nil, infra.WrapRepoErr("failed to decode instance geometry", err)
	}
	return &tree, nil
}

func (s *SeatMapReadStore) SeatRecords(ctx context.Context, instanceID uuid.UUID) ([]queries.SeatRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.seat_uid, s.section_code, s.row_label, s.seat_number,
		       s.price_tier_id, s.price_override_cents, s.status, s.version,
		       h.session_id, h.expires_at
		FROM event_seats s
		LEFT JOIN seat_holds h
		  ON h.event_seating_id = s.event_seating_id AND h.seat_uid = s.seat_uid
		WHERE s.event_seating_id = $1`,
		instanceID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load seat records", err)
	}
	defer rows.Close()

	var records []queries.SeatRecord
	for rows.Next() {
		var (
			r             queries.SeatRecord
			priceTierID   pgtype.UUID
			priceOverride pgtype.Int4
			status        string
			holdSession   pgtype.Text
			holdExpiresAt pgtype.Timestamptz
		)
		err := rows.Scan(
			&r.UID, &r.SectionCode, &r.RowLabel, &r.Number,
			&priceTierID, &priceOverride, &status, &r.Version,
			&holdSession, &holdExpiresAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan seat record", err)
		}
		r.PriceTierID = pgconv.UUIDPtrFromPgtype(priceTierID)
		r.PriceOverrideCents = pgconv.Int32PtrFromPgtype(priceOverride)
		r.Status = seating.SeatStatus(status)
		r.HoldSessionID = pgconv.StringPtrFromPgtype(holdSession)
		r.HoldExpiresAt = pgconv.TimePtrFromPgtype(holdExpiresAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to load seat records", err)
	}
	return records, nil
}
