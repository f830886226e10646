//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"seatwise/internal/infra/db"
	"seatwise/internal/pkg/config"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	pgContainerOnce sync.Once
	pgContainer     testcontainers.Container

	testUser     = "test"
	testPassword = "testpass"
)

// setupPool starts (once) a shared postgres container and gives the calling
// test its own freshly created database with the schema applied.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	startPostgresOnce(t)

	ctx := context.Background()
	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dbName := "testdb_" + uuid.New().String()[:8]
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, host, port.Port())

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err)
	defer adminPool.Close()

	_, err = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err)

	cfg := config.DBConfig{
		Host:     host,
		Port:     port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   dbName,
		SSLMode:  "disable",
	}
	pool, cleanup, err := db.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	applySchema(t, pool)
	return pool
}

func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	var schema []byte
	var err error
	for _, cand := range []string{
		filepath.Join("db", "schema.sql"),
		filepath.Join("..", "..", "..", "db", "schema.sql"),
	} {
		schema, err = os.ReadFile(cand)
		if err == nil {
			break
		}
	}
	require.NoError(t, err, "schema file not found")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
}

func startPostgresOnce(t *testing.T) {
	pgContainerOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=256m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "synchronous_commit=off",
				"-c", "full_page_writes=off",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		var err error
		pgContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start postgres container")
	})
}

// seedInstance inserts the design and instance rows that event_seats rows
// reference, returning the instance id.
func seedInstance(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	designID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO seating_designs (id, venue_id, name, version, status, sections)
		VALUES ($1, $2, 'main hall', 1, 'published', '[]')`,
		designID, uuid.New(),
	)
	require.NoError(t, err)

	instanceID := uuid.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO event_seating_instances (id, event_id, design_id, design_version, geometry, status, published_at)
		VALUES ($1, $2, $3, 1, '{}', 'published', now())`,
		instanceID, uuid.New(), designID,
	)
	require.NoError(t, err)

	return instanceID
}
