package db

import (
	"context"
	"database/sql"
)

// usersMigration is idempotent. google_id and password_hash are nullable:
// Google accounts have no password, registered accounts no google_id.
const usersMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    display_name text NOT NULL DEFAULT '',
    password_hash text,
    google_id text,
    avatar_url text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));
`

func RunUsersMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, usersMigration)
	return err
}
