package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS "user" (
    id              SERIAL PRIMARY KEY,
    name            TEXT NOT NULL,
    username        TEXT NOT NULL UNIQUE,
    email           TEXT NOT NULL UNIQUE,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    subscribed      BOOLEAN NOT NULL DEFAULT TRUE,
    roles           TEXT NOT NULL DEFAULT '',
    lc_handle       TEXT NOT NULL DEFAULT '',
    cc_handle       TEXT NOT NULL DEFAULT '',
    cf_handle       TEXT NOT NULL DEFAULT '',
    gfg_handle      TEXT NOT NULL DEFAULT '',
    total_solved    INTEGER NOT NULL DEFAULT 0,
    rank            INTEGER NOT NULL DEFAULT 0,
    password_hash   BYTEA,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS meeting (
    id          UUID PRIMARY KEY,
    title       TEXT NOT NULL,
    agenda      TEXT NOT NULL DEFAULT '',
    audience    TEXT NOT NULL,
    start_at    TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meeting_start_at ON meeting(start_at);

CREATE TABLE IF NOT EXISTS contest (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    platform    TEXT NOT NULL,
    key         TEXT NOT NULL,
    start_at    TIMESTAMPTZ NOT NULL,
    end_at      TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contest_start_at ON contest(start_at);
CREATE INDEX IF NOT EXISTS idx_contest_end_at ON contest(end_at);
`

// Migrate applies the database schema. Statements are idempotent so running
// it repeatedly is safe.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return errors.Wrap(err, "applying schema")
	}
	return nil
}
