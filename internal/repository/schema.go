package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"habitledger/pkg/outbox"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS routines (
		id         TEXT PRIMARY KEY,
		user_id    TEXT        NOT NULL,
		name       TEXT        NOT NULL,
		is_active  BOOLEAN     NOT NULL DEFAULT TRUE,
		categories TEXT[]      NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_routines_user_active ON routines (user_id, is_active)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id         TEXT PRIMARY KEY,
		routine_id TEXT        NOT NULL REFERENCES routines(id) ON DELETE CASCADE,
		name       TEXT        NOT NULL,
		emoji      TEXT        NOT NULL DEFAULT '',
		category   TEXT        NOT NULL DEFAULT '',
		time       TEXT,
		position   INT         NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_routine ON habits (routine_id, position)`,
	// one row per (habit, user, day); the unique index is what makes toggles idempotent across replicas
	`CREATE TABLE IF NOT EXISTS habit_completions (
		id         TEXT PRIMARY KEY,
		habit_id   TEXT        NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		user_id    TEXT        NOT NULL,
		date       DATE        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (habit_id, user_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_habit_completions_user_date ON habit_completions (user_id, date)`,
	outbox.Schema,
}

// EnsureSchema creates every table the service needs. Safe to run repeatedly.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema migrate: %w", err)
		}
	}
	return nil
}
