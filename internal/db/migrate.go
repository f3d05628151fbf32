package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. Every statement is idempotent, so it
// runs on each start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// Simple protocol allows several statements in one Exec.
	if _, err := pool.Exec(ctx, schema, pgx.QueryExecModeSimpleProtocol); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
