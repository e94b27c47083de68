//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"entregas/config"
	"entregas/pkg/logger"
	"entregas/storage"
	"entregas/storage/storagetest"
)

// TestStoreConformance runs the shared storage cases against a real
// database configured through the usual POSTGRES_* variables:
//
//	go test -tags integration ./storage/postgres/
//
// Every table is truncated before each case.
func TestStoreConformance(t *testing.T) {
	ctx := context.Background()
	cfg := config.Load()
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = filepath.Join("..", "..", "migrations", "postgres")
	}

	stg, err := New(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(stg.Close)

	storagetest.Run(t, func(t *testing.T) storage.IStorage {
		_, err := stg.GetPool().Exec(ctx, `
			TRUNCATE notifications, withdrawals, ratings, deliveries, orders, tariffs, driver_vehicles, profiles
			RESTART IDENTITY CASCADE
		`)
		require.NoError(t, err)
		return stg
	})
}
