package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0002_create_submissions.sql
var createSubmissionsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execSQL(ctx, db, createSubmissionsSQL)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execSQL(ctx, db, `DROP TABLE IF EXISTS answers --bun:split DROP TABLE IF EXISTS submissions`)
		},
	)
}
