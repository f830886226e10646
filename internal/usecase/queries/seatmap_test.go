//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/pkg/clock"
	"seatwise/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeReadStore struct {
	geometry *design.GeometryTree
	records  []queries.SeatRecord
	err      error
}

func (s *fakeReadStore) InstanceGeometry(_ context.Context, _ uuid.UUID) (*design.GeometryTree, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.geometry, nil
}

func (s *fakeReadStore) SeatRecords(_ context.Context, _ uuid.UUID) ([]queries.SeatRecord, error) {
	return s.records, nil
}

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func fixtureTree() *design.GeometryTree {
	return &design.GeometryTree{
		DesignID:      uuid.New(),
		DesignVersion: 3,
		CanvasWidth:   1200,
		CanvasHeight:  800,
		Sections: []design.Section{
			{
				Code: "A",
				Name: "Orchestra",
				Rows: []design.Row{
					{Label: "1", Seats: []design.SeatNode{
						{UID: "A-1-1", Number: "1", X: 10, Y: 10},
						{UID: "A-1-2", Number: "2", X: 20, Y: 10},
						{UID: "A-1-3", Number: "3", X: 30, Y: 10},
						{UID: "A-1-4", Number: "4", X: 40, Y: 10},
						{UID: "A-1-5", Number: "5", X: 50, Y: 10},
					}},
				},
			},
		},
	}
}

func record(uid string, status seating.SeatStatus, version int32) queries.SeatRecord {
	return queries.SeatRecord{
		UID:         uid,
		SectionCode: "A",
		RowLabel:    "1",
		Number:      uid[len(uid)-1:],
		Status:      status,
		Version:     version,
	}
}

func TestSeatMapGet(t *testing.T) {
	instanceID := uuid.New()

	t.Run("classifies seats for the requesting session", func(t *testing.T) {
		mine := record("A-1-1", seating.StatusHeld, 2)
		mine.HoldSessionID = strPtr("sess-1")
		mine.HoldExpiresAt = timePtr(baseTime.Add(time.Minute))

		theirs := record("A-1-2", seating.StatusHeld, 2)
		theirs.HoldSessionID = strPtr("sess-2")
		theirs.HoldExpiresAt = timePtr(baseTime.Add(time.Minute))

		store := &fakeReadStore{
			geometry: fixtureTree(),
			records: []queries.SeatRecord{
				mine,
				theirs,
				record("A-1-3", seating.StatusAvailable, 1),
				record("A-1-4", seating.StatusSold, 3),
				record("A-1-5", seating.StatusBlocked, 2),
			},
		}
		q := queries.NewSeatMap(store, clock.NewMockClock(baseTime))

		view, err := q.Get(context.Background(), instanceID, "sess-1")
		require.NoError(t, err)
		require.Len(t, view.Sections, 1)
		require.Len(t, view.Sections[0].Rows, 1)
		seats := view.Sections[0].Rows[0].Seats
		require.Len(t, seats, 5)

		assert.Equal(t, queries.SeatHeldByMe, seats[0].Availability)
		assert.Equal(t, queries.SeatHeldByOther, seats[1].Availability)
		assert.Equal(t, queries.SeatAvailable, seats[2].Availability)
		assert.Equal(t, queries.SeatSold, seats[3].Availability)
		assert.Equal(t, queries.SeatBlocked, seats[4].Availability)

		assert.Equal(t, int32(3), view.DesignVersion)
		assert.Equal(t, baseTime, view.GeneratedAt)
		assert.Equal(t, int32(2), seats[0].Version)
	})

	t.Run("an anonymous session never sees held_by_me", func(t *testing.T) {
		held := record("A-1-1", seating.StatusHeld, 2)
		held.HoldSessionID = strPtr("sess-1")
		held.HoldExpiresAt = timePtr(baseTime.Add(time.Minute))

		store := &fakeReadStore{geometry: fixtureTree(), records: []queries.SeatRecord{held}}
		q := queries.NewSeatMap(store, clock.NewMockClock(baseTime))

		view, err := q.Get(context.Background(), instanceID, "")
		require.NoError(t, err)
		assert.Equal(t, queries.SeatHeldByOther, view.Sections[0].Rows[0].Seats[0].Availability)
	})

	t.Run("an expired hold reads as available before reclamation", func(t *testing.T) {
		held := record("A-1-1", seating.StatusHeld, 2)
		held.HoldSessionID = strPtr("sess-1")
		held.HoldExpiresAt = timePtr(baseTime.Add(-time.Second))

		orphaned := record("A-1-2", seating.StatusHeld, 2)

		store := &fakeReadStore{geometry: fixtureTree(), records: []queries.SeatRecord{held, orphaned}}
		q := queries.NewSeatMap(store, clock.NewMockClock(baseTime))

		view, err := q.Get(context.Background(), instanceID, "sess-1")
		require.NoError(t, err)
		seats := view.Sections[0].Rows[0].Seats
		assert.Equal(t, queries.SeatAvailable, seats[0].Availability)
		assert.Equal(t, queries.SeatAvailable, seats[1].Availability)
	})

	t.Run("geometry nodes without inventory rows render disabled", func(t *testing.T) {
		store := &fakeReadStore{
			geometry: fixtureTree(),
			records:  []queries.SeatRecord{record("A-1-1", seating.StatusAvailable, 1)},
		}
		q := queries.NewSeatMap(store, clock.NewMockClock(baseTime))

		view, err := q.Get(context.Background(), instanceID, "sess-1")
		require.NoError(t, err)
		seats := view.Sections[0].Rows[0].Seats
		assert.Equal(t, queries.SeatAvailable, seats[0].Availability)
		for _, seat := range seats[1:] {
			assert.Equal(t, queries.SeatDisabled, seat.Availability, seat.UID)
			assert.Zero(t, seat.Version)
		}
	})

	t.Run("inventory rows without a geometry node are not rendered", func(t *testing.T) {
		// Re-snapshot removed the node; the row keeps its state in the store
		// but the frozen geometry decides what the map shows.
		sold := record("Z-9-9", seating.StatusSold, 3)

		store := &fakeReadStore{
			geometry: fixtureTree(),
			records:  []queries.SeatRecord{record("A-1-1", seating.StatusAvailable, 1), sold},
		}
		q := queries.NewSeatMap(store, clock.NewMockClock(baseTime))

		view, err := q.Get(context.Background(), instanceID, "sess-1")
		require.NoError(t, err)
		seats := view.Sections[0].Rows[0].Seats
		require.Len(t, seats, 5)
		for _, seat := range seats {
			assert.NotEqual(t, "Z-9-9", seat.UID)
		}
	})

	t.Run("unknown instance", func(t *testing.T) {
		store := &fakeReadStore{err: infra.WrapRepoErr("instance not found", nil, infra.KindNotFound)}
		q := queries.NewSeatMap(store, clock.NewMockClock(baseTime))

		_, err := q.Get(context.Background(), instanceID, "sess-1")
		assert.ErrorIs(t, err, queries.ErrInstanceNotFound)
	})

	t.Run("store failures are marked", func(t *testing.T) {
		store := &fakeReadStore{err: infra.WrapRepoErr("connection refused", nil, infra.KindDBFailure)}
		q := queries.NewSeatMap(store, clock.NewMockClock(baseTime))

		_, err := q.Get(context.Background(), instanceID, "sess-1")
		assert.ErrorIs(t, err, queries.ErrStorageFailure)
	})
}
