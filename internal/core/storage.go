package core

import (
	"context"
	"fmt"
	"os"

	"globewidget/internal/infra/persistence/memory"
	"globewidget/internal/infra/persistence/postgres"
	"globewidget/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete snapshot storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

var (
	_ SnapshotStore = (*memory.Store)(nil)
	_ SnapshotStore = (*sqlite.Store)(nil)
	_ SnapshotStore = (*postgres.Store)(nil)
)

// OpenSnapshotStore selects a backend using environment variables.
// Defaults to memory when unset.
//
//	GLOBEWIDGET_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	GLOBEWIDGET_SQLITE_PATH: path to sqlite file (default ./globewidget.db)
//	GLOBEWIDGET_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenSnapshotStore(ctx context.Context) (SnapshotStore, error) {
	driver := os.Getenv("GLOBEWIDGET_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		s, err := sqlite.NewStore(os.Getenv("GLOBEWIDGET_SQLITE_PATH"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoragePostgres:
		ps, err := postgres.NewStore(ctx, os.Getenv("GLOBEWIDGET_POSTGRES_DSN"))
		if err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
