package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0003_create_badges.sql
var createBadgesSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execSQL(ctx, db, createBadgesSQL)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execSQL(ctx, db, `DROP TABLE IF EXISTS student_badges --bun:split DROP TABLE IF EXISTS badges`)
		},
	)
}
