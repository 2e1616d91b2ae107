package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS timer_profiles (
	user_id    TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	settings   JSONB NOT NULL,
	session    JSONB NOT NULL,
	stats      JSONB NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS session_records (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	category        TEXT NOT NULL,
	kind            TEXT NOT NULL,
	planned_minutes INTEGER NOT NULL,
	actual_minutes  INTEGER NOT NULL CHECK (actual_minutes >= 0),
	is_completed    BOOLEAN NOT NULL,
	was_skipped     BOOLEAN NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	ended_at        TIMESTAMPTZ NOT NULL,
	cycle_number    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_records_user_started ON session_records (user_id, started_at);

CREATE TABLE IF NOT EXISTS categories (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	color          TEXT NOT NULL,
	is_default     BOOLEAN NOT NULL DEFAULT FALSE,
	total_sessions INTEGER NOT NULL DEFAULT 0,
	total_minutes  INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_user_name ON categories (user_id, LOWER(name));

CREATE TABLE IF NOT EXISTS habits (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	color          TEXT NOT NULL DEFAULT '',
	icon           TEXT NOT NULL DEFAULT '',
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,
	version        INTEGER NOT NULL DEFAULT 1,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	archived_at    TIMESTAMPTZ,
	deleted_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_habits_user ON habits (user_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS habit_logs (
	habit_id  TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
	day       DATE NOT NULL,
	completed BOOLEAN NOT NULL,
	PRIMARY KEY (habit_id, day)
);
`

// Migrate creates the tables the Postgres repositories need. It is safe to
// run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
