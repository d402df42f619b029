package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		entity TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		handle TEXT NOT NULL DEFAULT '',
		full_text TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 5,
		sentiment TEXT NOT NULL DEFAULT 'neutral',
		reach INTEGER NOT NULL DEFAULT 0,
		engagement INTEGER NOT NULL DEFAULT 0,
		badges TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS entities (
		id BIGSERIAL PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		entity_type TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS media (
		id BIGSERIAL PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		media_type TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS evidence (
		id BIGSERIAL PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		source TEXT NOT NULL DEFAULT '',
		title TEXT,
		url TEXT,
		snippet TEXT,
		evidence_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admin_responses (
		id BIGSERIAL PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		response_text TEXT NOT NULL,
		generated_by TEXT NOT NULL DEFAULT '',
		model_used TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS entities_post_id_idx ON entities (post_id)`,
	`CREATE INDEX IF NOT EXISTS entities_type_text_idx ON entities (entity_type, text)`,
	`CREATE INDEX IF NOT EXISTS evidence_post_id_idx ON evidence (post_id)`,
	`CREATE INDEX IF NOT EXISTS admin_responses_post_id_idx ON admin_responses (post_id)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
