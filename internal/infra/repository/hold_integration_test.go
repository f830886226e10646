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

func TestHoldRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	seatRepo := repository.NewSeatRepository(pool)
	repo := repository.NewHoldRepository(pool)
	instanceID := seedInstance(t, pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := seatRepo.InsertBulk(ctx, []*seating.Seat{
		newSeat(instanceID, "A-1-1", "A", "1", "1"),
		newSeat(instanceID, "A-1-2", "A", "1", "2"),
	})
	require.NoError(t, err)

	t.Run("the primary key allows one hold per seat", func(t *testing.T) {
		err := repo.Insert(ctx, seating.NewHold(instanceID, "A-1-1", "sess-1", now.Add(time.Minute)))
		require.NoError(t, err)

		err = repo.Insert(ctx, seating.NewHold(instanceID, "A-1-1", "sess-2", now.Add(time.Minute)))
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})

	t.Run("find returns nil for a seat without a hold", func(t *testing.T) {
		hold, err := repo.Find(ctx, instanceID, "A-1-2")
		require.NoError(t, err)
		assert.Nil(t, hold)
	})

	t.Run("extend touches only the owner's live hold", func(t *testing.T) {
		later := now.Add(5 * time.Minute)

		affected, err := repo.ExtendExpiry(ctx, instanceID, "A-1-1", "sess-2", later, now)
		require.NoError(t, err)
		assert.Zero(t, affected)

		affected, err = repo.ExtendExpiry(ctx, instanceID, "A-1-1", "sess-1", later, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		hold, err := repo.Find(ctx, instanceID, "A-1-1")
		require.NoError(t, err)
		require.NotNil(t, hold)
		assert.True(t, hold.ExpiresAt().Equal(later))
	})

	t.Run("an expired hold cannot be extended", func(t *testing.T) {
		affected, err := repo.ExtendExpiry(ctx, instanceID, "A-1-1", "sess-1", now.Add(time.Hour), now.Add(time.Hour))
		require.NoError(t, err)
		assert.Zero(t, affected)
	})

	t.Run("expired holds surface in the sweep listings", func(t *testing.T) {
		sweepAt := now.Add(10 * time.Minute)

		holds, err := repo.ListExpired(ctx, instanceID, sweepAt, 10)
		require.NoError(t, err)
		require.Len(t, holds, 1)
		assert.Equal(t, "A-1-1", holds[0].SeatUID())

		ids, err := repo.ListInstancesWithExpired(ctx, sweepAt, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{instanceID}, ids)
	})

	t.Run("delete scoped to a session skips other owners", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, instanceID, "A-1-1", "sess-2")
		require.NoError(t, err)
		assert.Zero(t, deleted)

		deleted, err = repo.Delete(ctx, instanceID, "A-1-1", "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}
