package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Migrate applies the schema. Idempotent; every statement uses IF NOT EXISTS.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                TEXT PRIMARY KEY,
	email             TEXT NOT NULL UNIQUE,
	first_name        TEXT,
	last_name         TEXT,
	profile_image_url TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	owner_id   TEXT NOT NULL,
	token      TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked    BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS todos (
	id        TEXT PRIMARY KEY,
	owner_id  TEXT NOT NULL,
	title     TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS question_counts (
	id       TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	subject  TEXT NOT NULL,
	count    INTEGER NOT NULL DEFAULT 0,
	date     TEXT NOT NULL,
	UNIQUE (owner_id, subject, date)
);

CREATE TABLE IF NOT EXISTS timer_sessions (
	id       TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	subject  TEXT NOT NULL,
	duration INTEGER NOT NULL,
	date     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS timer_sessions_owner_date ON timer_sessions (owner_id, date);

CREATE TABLE IF NOT EXISTS net_results (
	id             TEXT PRIMARY KEY,
	owner_id       TEXT NOT NULL,
	exam_type      TEXT NOT NULL,
	ayt_field      TEXT,
	date           TEXT NOT NULL,
	publisher      TEXT NOT NULL,
	total_net      TEXT NOT NULL,
	subject_scores JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
