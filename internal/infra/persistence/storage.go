// Package persistence selects a concrete persistent store backend from the
// environment.
package persistence

import (
	"fmt"
	"os"

	"inventorycore/internal/core"
	"inventorycore/internal/infra/persistence/postgres"
	"inventorycore/internal/infra/persistence/sqlite"
	"inventorycore/pkg/domain"
)

// Driver identifies a concrete persistent storage implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// OpenStore selects a backend using environment variables. Defaults to sqlite
// when unset.
//
//	INVENTORYCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	INVENTORYCORE_SQLITE_PATH: path to sqlite file (default ./inventorycore.db)
//	INVENTORYCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenStore(engine *domain.RulesEngine) (domain.PersistentStore, error) {
	driver := os.Getenv("INVENTORYCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return core.NewMemoryStore(engine), nil
	case DriverSQLite:
		return sqlite.NewStore(os.Getenv("INVENTORYCORE_SQLITE_PATH"), engine)
	case DriverPostgres:
		return postgres.NewStore(os.Getenv("INVENTORYCORE_POSTGRES_DSN"), engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
