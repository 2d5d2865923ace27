package migrations

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// createUsersTable creates the users table.
// Both movie lists live on the row as JSONB arrays.
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   "users",
		RunSQL: func(ctx context.Context, tx *sqlx.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS users (
					user_id UUID PRIMARY KEY,
					username VARCHAR(50) NOT NULL,
					email VARCHAR(255) NOT NULL,
					password_hash TEXT,
					salt TEXT,
					is_federated BOOLEAN NOT NULL DEFAULT FALSE,
					photo_url TEXT NOT NULL DEFAULT '',
					preferred_language VARCHAR(10) NOT NULL DEFAULT 'en',
					watchlist JSONB NOT NULL DEFAULT '[]'::jsonb,
					favourites JSONB NOT NULL DEFAULT '[]'::jsonb,
					reset_code_hash TEXT,
					reset_code_expiry TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT idx_users_email UNIQUE (email)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// addMovieListChecks rejects list columns that are not JSON arrays.
func addMovieListChecks() Migration {
	return Migration{
		Name:        "add_movie_list_checks",
		Description: "Requires watchlist and favourites to be JSON arrays",
		RunSQL: func(ctx context.Context, tx *sqlx.Tx) error {
			statements := []string{
				`ALTER TABLE users DROP CONSTRAINT IF EXISTS chk_users_watchlist_array`,
				`ALTER TABLE users ADD CONSTRAINT chk_users_watchlist_array CHECK (jsonb_typeof(watchlist) = 'array')`,
				`ALTER TABLE users DROP CONSTRAINT IF EXISTS chk_users_favourites_array`,
				`ALTER TABLE users ADD CONSTRAINT chk_users_favourites_array CHECK (jsonb_typeof(favourites) = 'array')`,
			}

			for _, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// addResetAttempts counts wrong reset codes per account.
func addResetAttempts() Migration {
	return Migration{
		Name:        "add_reset_attempts",
		Description: "Adds the failed reset code counter",
		RunSQL: func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS reset_attempts INTEGER NOT NULL DEFAULT 0`)
			return err
		},
	}
}
