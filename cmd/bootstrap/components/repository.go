package components

import (
	"seatwise/internal/infra/db"
	"seatwise/internal/infra/readstore"
	"seatwise/internal/infra/repository"
	"seatwise/internal/infra/uow"
	"seatwise/internal/pkg/config"
	"seatwise/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		// Pool-backed jobs repository for the dispatcher; the coordinator
		// reaches the same table through its transaction.
		repository.NewNotificationRepository,
		NewSeatMapStore,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewSeatMapStore(cfg config.Config, dbtx db.DBTX, rdb *redis.Client) queries.SeatMapReadStore {
	base := readstore.NewSeatMapReadStore(dbtx)
	if rdb == nil {
		return base
	}
	return readstore.NewCachedSeatMapStore(base, rdb, cfg.Redis.SeatMapTTL)
}
