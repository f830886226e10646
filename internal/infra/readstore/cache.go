package readstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"seatwise/internal/domain/design"
	"seatwise/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CachedSeatMapStore fronts a SeatMapReadStore with a short-TTL redis cache.
// Seat records are cached raw; hold expiry is folded above the cache, so a
// cached row can never pin a stale classification longer than the TTL.
// Cache failures degrade to the inner store, never to an error.
type CachedSeatMapStore struct {
	inner queries.SeatMapReadStore
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedSeatMapStore(inner queries.SeatMapReadStore, rdb *redis.Client, ttl time.Duration) *CachedSeatMapStore {
	return &CachedSeatMapStore{inner: inner, rdb: rdb, ttl: ttl}
}

func (s *CachedSeatMapStore) InstanceGeometry(ctx context.Context, instanceID uuid.UUID) (*design.GeometryTree, error) {
	key := "seatmap:geometry:" + instanceID.String()
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var tree design.GeometryTree
		if err := json.Unmarshal(raw, &tree); err == nil {
			return &tree, nil
		}
	} else if err != redis.Nil {
		slog.DebugContext(ctx, "seat map cache read failed", "key", key, "error", err.Error())
	}

	tree, err := s.inner.InstanceGeometry(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, tree)
	return tree, nil
}

func (s *CachedSeatMapStore) SeatRecords(ctx context.Context, instanceID uuid.UUID) ([]queries.SeatRecord, error) {
	key := "seatmap:records:" + instanceID.String()
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var records []queries.SeatRecord
		if err := json.Unmarshal(raw, &records); err == nil {
			return records, nil
		}
	} else if err != redis.Nil {
		slog.DebugContext(ctx, "seat map cache read failed", "key", key, "error", err.Error())
	}

	records, err := s.inner.SeatRecords(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, records)
	return records, nil
}

func (s *CachedSeatMapStore) put(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		slog.DebugContext(ctx, "seat map cache write failed", "key", key, "error", err.Error())
	}
}
