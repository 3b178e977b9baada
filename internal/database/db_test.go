package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// testDatabaseURL returns DATABASE_URL, or starts a throwaway Postgres
// container. It skips when neither is available.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	if testing.Short() {
		t.Skip("DATABASE_URL not set and -short given")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("humanorai"),
		postgres.WithUsername("humanorai"),
		postgres.WithPassword("humanorai"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dbURL, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dbURL
}

func ptr(f float64) *float64 { return &f }

func TestHistoryStore(t *testing.T) {
	dbURL := testDatabaseURL(t)
	ctx := context.Background()

	// Migrations are idempotent and reversible
	require.NoError(t, Migrate(dbURL))
	require.NoError(t, Migrate(dbURL))
	require.NoError(t, MigrateDown(dbURL))
	require.NoError(t, MigrateDown(dbURL))
	require.NoError(t, Migrate(dbURL))

	db, err := New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Ping(ctx))

	_, err = db.ClearHistory(ctx)
	require.NoError(t, err)

	t.Run("empty list", func(t *testing.T) {
		records, err := db.ListHistory(ctx, 50)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("create and list newest first", func(t *testing.T) {
		first, err := db.CreateHistory(ctx, CreateHistoryParams{
			TextPreview: "first text", TextLen: 10, FinalLabel: "human",
			LogRegAI: ptr(10), SVMAI: ptr(20), NBAI: ptr(30),
		})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), first.CreatedAt, time.Minute)

		time.Sleep(5 * time.Millisecond)
		second, err := db.CreateHistory(ctx, CreateHistoryParams{
			TextPreview: "second text", TextLen: 11, FinalLabel: "ai",
			LogRegAI: ptr(90), SVMAI: nil, NBAI: ptr(70),
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		records, err := db.ListHistory(ctx, 50)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, second.ID, records[0].ID)
		assert.Equal(t, first.ID, records[1].ID)
		assert.Nil(t, records[0].SVMAI)
		assert.Equal(t, 90.0, *records[0].LogRegAI)

		limited, err := db.ListHistory(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("clear", func(t *testing.T) {
		n, err := db.ClearHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		records, err := db.ListHistory(ctx, 50)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
