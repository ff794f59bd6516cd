package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"rentshare-backend/internal/logger"
)

//go:embed schema.sql
var schema string

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("Migrate", "schema.sql")
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.DatabaseResult("Migrate", 0, err)
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.DatabaseResult("Migrate", 0, nil)
	return nil
}
