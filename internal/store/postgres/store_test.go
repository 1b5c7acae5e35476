package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/editathons/internal/store/storetest"
)

const migrationsDir = "../../../migrations"

// startContainer starts a throwaway Postgres container and returns its DSN
func startContainer(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return dsn, func() { container.Terminate(ctx) }
}

// setupTestDB starts a container and migrates it
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	dsn, terminate := startContainer(t)

	s, err := NewPostgresStore(dsn)
	require.NoError(t, err, "Failed to create store")

	require.NoError(t, s.ApplyMigrations(migrationsDir), "Failed to apply migrations")

	cleanup := func() {
		s.Close()
		terminate()
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestStats(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	storetest.Seed(t, s.DB)
	storetest.RunStatsTests(t, s)
}

func TestApplyMigrationsTwice(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, s.ApplyMigrations(migrationsDir), "Second run must be a no-op")

	var applied int
	require.NoError(t, s.DB.Get(&applied, "SELECT COUNT(*) FROM schema_migrations"))
	assert.Equal(t, 4, applied)
}

func TestApplyMigrationsConcurrently(t *testing.T) {
	dsn, terminate := startContainer(t)
	defer terminate()

	stores := make([]*PostgresStore, 2)
	for i := range stores {
		s, err := NewPostgresStore(dsn)
		require.NoError(t, err, "Failed to create store")
		defer s.Close()
		stores[i] = s
	}

	errs := make(chan error, len(stores))
	var wg sync.WaitGroup
	for _, s := range stores {
		wg.Add(1)
		go func(s *PostgresStore) {
			defer wg.Done()
			errs <- s.ApplyMigrations(migrationsDir)
		}(s)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var applied int
	require.NoError(t, stores[0].DB.Get(&applied, "SELECT COUNT(*) FROM schema_migrations"))
	assert.Equal(t, 4, applied)
}

func TestPlaceholderConversion(t *testing.T) {
	assert.Equal(t, "WHERE a = $1 AND b = $2", convertPlaceholders("WHERE a = ? AND b = ?"))
}
