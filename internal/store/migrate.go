package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migration is one versioned schema step. Steps are applied in order at
// startup and recorded in schema_migrations, so each runs exactly once per
// database. The sequence mirrors how the schema actually evolved: users and
// tasks predate the email and owner columns.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create users",
		stmts: []string{`
			CREATE TABLE IF NOT EXISTS users (
				id            BIGSERIAL PRIMARY KEY,
				username      TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		version: 2,
		name:    "create tasks",
		stmts: []string{`
			CREATE TABLE IF NOT EXISTS tasks (
				id          BIGSERIAL PRIMARY KEY,
				title       TEXT NOT NULL,
				description TEXT,
				due_date    TEXT,
				priority    INTEGER NOT NULL DEFAULT 2,
				completed   BOOLEAN NOT NULL DEFAULT FALSE,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		version: 3,
		name:    "add users.email",
		stmts: []string{
			`ALTER TABLE users ADD COLUMN IF NOT EXISTS email TEXT`,
			`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx
			 ON users (lower(email)) WHERE email IS NOT NULL`,
		},
	},
	{
		version: 4,
		name:    "add tasks.user_id",
		stmts: []string{
			// Nullable: rows created before this column existed have no owner.
			`ALTER TABLE tasks ADD COLUMN IF NOT EXISTS user_id BIGINT
			 REFERENCES users(id) ON DELETE CASCADE`,
			`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
		},
	},
	{
		version: 5,
		name:    "create sessions",
		stmts: []string{`
			CREATE TABLE IF NOT EXISTS sessions (
				sid        TEXT PRIMARY KEY,
				payload    TEXT NOT NULL,
				expires_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at)`,
		},
	},
}

// Migrate brings the schema up to the current version. Safe to run on every
// start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`,
			m.version,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if applied {
			continue
		}

		for _, stmt := range m.stmts {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			m.version, m.name,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		log.Printf("applied migration %d: %s", m.version, m.name)
	}
	return nil
}
