package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements are safe to run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS todos (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT        NOT NULL,
		description TEXT        NOT NULL DEFAULT '',
		completed   BOOLEAN     NOT NULL DEFAULT FALSE,
		due_date    DATE,
		priority    TEXT        NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
		tags        TEXT[],
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Tables created before the extended columns existed.
	`ALTER TABLE todos ADD COLUMN IF NOT EXISTS due_date DATE`,
	`ALTER TABLE todos ADD COLUMN IF NOT EXISTS priority TEXT NOT NULL DEFAULT 'medium'`,
	`ALTER TABLE todos ADD COLUMN IF NOT EXISTS tags TEXT[]`,
	`CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos (created_at DESC)`,
}

// EnsureSchema creates the todos table and its index if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return classify("ensure schema", nil, true)
	}
	return applySchema(ctx, pool)
}

func applySchema(ctx context.Context, db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return classify("ensure schema", err, false)
		}
	}
	return nil
}
