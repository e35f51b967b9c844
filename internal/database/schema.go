package database

import "context"

// Schema creates the tables the application needs. Statements are idempotent
// so the bootstrap can run on every startup.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reservations (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT NOT NULL,
    phone            TEXT NOT NULL,
    date             TEXT NOT NULL,
    time             TEXT NOT NULL,
    guests           INTEGER NOT NULL,
    special_requests TEXT NOT NULL DEFAULT '',
    club             TEXT NOT NULL,
    club_location    TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reservations_email ON reservations (email);
`

// EnsureSchema applies the schema against the given service.
func EnsureSchema(ctx context.Context, db Service) error {
	_, err := db.Exec(ctx, Schema)
	return err
}
