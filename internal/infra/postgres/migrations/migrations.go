package migrations

import (
	"context"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// execSQL runs a migration file statement by statement, split on bun's
// "--bun:split" marker.
func execSQL(ctx context.Context, db *bun.DB, script string) error {
	for _, stmt := range strings.Split(script, "--bun:split") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
