//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/infra/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeat(instanceID uuid.UUID, uid, section, row, number string) *seating.Seat {
	return seating.ReconstructSeat(
		instanceID, uid, section, row, number, nil, nil,
		seating.StatusAvailable, 1, nil, time.Time{},
	)
}

func TestSeatRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := repository.NewSeatRepository(pool)
	instanceID := seedInstance(t, pool)

	seats := []*seating.Seat{
		newSeat(instanceID, "A-1-1", "A", "1", "1"),
		newSeat(instanceID, "A-1-2", "A", "1", "2"),
		newSeat(instanceID, "A-1-3", "A", "1", "3"),
	}
	inserted, err := repo.InsertBulk(ctx, seats)
	require.NoError(t, err)
	require.Equal(t, int64(3), inserted)

	t.Run("count and find round trip", func(t *testing.T) {
		n, err := repo.CountByInstance(ctx, instanceID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		seat, err := repo.Find(ctx, instanceID, "A-1-2")
		require.NoError(t, err)
		assert.Equal(t, seating.StatusAvailable, seat.Status())
		assert.Equal(t, int32(1), seat.Version())
		assert.Equal(t, "A", seat.SectionCode())
	})

	t.Run("find misses map to not found", func(t *testing.T) {
		_, err := repo.Find(ctx, instanceID, "nope")
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("cas succeeds only against the current version", func(t *testing.T) {
		affected, err := repo.UpdateStatusCAS(ctx, instanceID, "A-1-1", 1, seating.StatusHeld, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		// Stale version: zero rows, no error.
		affected, err = repo.UpdateStatusCAS(ctx, instanceID, "A-1-1", 1, seating.StatusSold, nil)
		require.NoError(t, err)
		assert.Zero(t, affected)

		seat, err := repo.Find(ctx, instanceID, "A-1-1")
		require.NoError(t, err)
		assert.Equal(t, seating.StatusHeld, seat.Status())
		assert.Equal(t, int32(2), seat.Version())
	})

	t.Run("cas records the order ref on sale", func(t *testing.T) {
		orderRef := uuid.New()
		affected, err := repo.UpdateStatusCAS(ctx, instanceID, "A-1-1", 2, seating.StatusSold, &orderRef)
		require.NoError(t, err)
		require.Equal(t, int64(1), affected)

		seat, err := repo.Find(ctx, instanceID, "A-1-1")
		require.NoError(t, err)
		assert.Equal(t, seating.StatusSold, seat.Status())
		require.NotNil(t, seat.OrderRef())
		assert.Equal(t, orderRef, *seat.OrderRef())
	})

	t.Run("status sweep moves only matching seats", func(t *testing.T) {
		moved, err := repo.UpdateStatusWhere(ctx, instanceID, []string{"A-1-2", "A-1-3"}, seating.StatusAvailable, seating.StatusBlocked)
		require.NoError(t, err)
		assert.Equal(t, int64(2), moved)

		// A nil uid list matches every seat in the source status.
		moved, err = repo.UpdateStatusWhere(ctx, instanceID, nil, seating.StatusBlocked, seating.StatusAvailable)
		require.NoError(t, err)
		assert.Equal(t, int64(2), moved)

		// A non-nil empty list binds as an empty array rather than NULL and
		// must behave the same way.
		moved, err = repo.UpdateStatusWhere(ctx, instanceID, []string{}, seating.StatusAvailable, seating.StatusBlocked)
		require.NoError(t, err)
		assert.Equal(t, int64(2), moved)

		moved, err = repo.UpdateStatusWhere(ctx, instanceID, nil, seating.StatusBlocked, seating.StatusAvailable)
		require.NoError(t, err)
		assert.Equal(t, int64(2), moved)
	})

	t.Run("duplicate seat rows are rejected", func(t *testing.T) {
		_, err := repo.InsertBulk(ctx, []*seating.Seat{newSeat(instanceID, "A-1-1", "A", "1", "1")})
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})
}
