package database

import (
	"context"
	"fmt"

	"github.com/yourusername/gridiron-engine/internal/config"
)

// Initialize creates a database connection pool and verifies the schema is present
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Verify migrations are applied by checking schema_migrations table
	var migrationCount int
	err = db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&migrationCount)
	if err != nil {
		// Table might not exist yet, which is OK for initial setup
		return db, nil
	}

	if migrationCount == 0 {
		fmt.Println("Warning: No migrations have been applied. Please run database migrations.")
	}

	return db, nil
}
