package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexivanou/placefinder/internal/config"
	"github.com/alexivanou/placefinder/internal/database"
)

var dbCounter int

func setupSQLiteRepo(t *testing.T) StateRepository {
	dbCounter++
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("repo_test_%d", dbCounter)}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	require.NoError(t, err)

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite",
		"sqlite3",
		driver,
	)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return NewStateRepository(db, config.DBTypeMemory)
}

func setupBadgerRepo(t *testing.T) StateRepository {
	db, err := database.OpenBadger("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBadgerStateRepository(db)
}

func TestStateRepository(t *testing.T) {
	backends := []struct {
		name  string
		setup func(t *testing.T) StateRepository
	}{
		{name: "sqlite", setup: setupSQLiteRepo},
		{name: "badger", setup: setupBadgerRepo},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("missing record", func(t *testing.T) {
				repo := backend.setup(t)
				_, err := repo.Load(ctx, "placefinder:places")
				assert.ErrorIs(t, err, ErrRecordNotFound)
			})

			t.Run("save and load", func(t *testing.T) {
				repo := backend.setup(t)
				at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
				require.NoError(t, repo.Save(ctx, Record{
					Namespace: "placefinder:places",
					Version:   1,
					Payload:   []byte(`{"version":1,"searchHistory":[]}`),
					UpdatedAt: at,
				}))

				record, err := repo.Load(ctx, "placefinder:places")
				require.NoError(t, err)
				assert.Equal(t, 1, record.Version)
				assert.JSONEq(t, `{"version":1,"searchHistory":[]}`, string(record.Payload))
				assert.True(t, at.Equal(record.UpdatedAt))
			})

			t.Run("save overwrites", func(t *testing.T) {
				repo := backend.setup(t)
				require.NoError(t, repo.Save(ctx, Record{Namespace: "ns", Version: 1, Payload: []byte("a")}))
				require.NoError(t, repo.Save(ctx, Record{Namespace: "ns", Version: 2, Payload: []byte("b")}))

				record, err := repo.Load(ctx, "ns")
				require.NoError(t, err)
				assert.Equal(t, 2, record.Version)
				assert.Equal(t, "b", string(record.Payload))
				assert.False(t, record.UpdatedAt.IsZero())
			})
		})
	}
}
