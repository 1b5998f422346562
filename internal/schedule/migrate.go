package schedule

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of *pgxpool.Pool the migration needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func AutoMigrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		log.Printf("schedule-service: migrate pgcrypto: %v", err)
	}

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schedule_nodes (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			parent_id uuid REFERENCES schedule_nodes(id) ON DELETE CASCADE,
			node_type TEXT NOT NULL CHECK (node_type IN ('channel', 'playlist', 'bucket')),
			name TEXT NOT NULL,
			position INT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			schedule TEXT NOT NULL DEFAULT '',
			channel_ref TEXT NOT NULL DEFAULT '',
			carousel_kind TEXT NOT NULL DEFAULT '',
			carousel_label TEXT NOT NULL DEFAULT '',
			content_ref TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		log.Printf("schedule-service: migrate schedule_nodes: %v", err)
		return err
	}

	if _, err := db.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_schedule_nodes_parent
		ON schedule_nodes(parent_id, position)
	`); err != nil {
		return err
	}

	// A channel definition backs at most one channel node.
	if _, err := db.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_schedule_nodes_channel_ref
		ON schedule_nodes(channel_ref)
		WHERE channel_ref <> ''
	`); err != nil {
		return err
	}

	return nil
}
