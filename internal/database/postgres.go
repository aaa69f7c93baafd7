package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Constraint names referenced when translating unique violations.
const (
	constraintLibraryUserTrack = "library_user_track_key"
	constraintProfilesEmail    = "profiles_email_key"
	constraintProfilesUsername = "profiles_username_key"
)

const schema = `
	CREATE TABLE IF NOT EXISTS profiles (
		id            TEXT        PRIMARY KEY,
		email         TEXT        NOT NULL,
		username      TEXT        NOT NULL,
		password_hash TEXT        NOT NULL,
		name          TEXT        NOT NULL,
		last_name     TEXT        NOT NULL,
		birth_date    DATE        NOT NULL,
		bio           TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT profiles_email_key UNIQUE (email),
		CONSTRAINT profiles_username_key UNIQUE (username)
	);

	CREATE TABLE IF NOT EXISTS access_tokens (
		id         TEXT        PRIMARY KEY,
		user_id    TEXT        NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS library (
		id               BIGSERIAL        PRIMARY KEY,
		user_id          TEXT             NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
		track_ref        TEXT             NOT NULL,
		title            VARCHAR(255)     NOT NULL,
		artist_name      VARCHAR(255)     NOT NULL,
		audio_url        TEXT             NOT NULL,
		image_url        TEXT             NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL,
		created_at       TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		CONSTRAINT library_user_track_key UNIQUE (user_id, track_ref)
	);

	CREATE INDEX IF NOT EXISTS library_user_created_idx ON library (user_id, created_at DESC);
`

// Connect opens a PostgreSQL connection pool, verifies connectivity,
// initialises the schema, and returns the ready-to-use *sql.DB.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Connection pool defaults, normally these values could be made configurable in production.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Pinger is satisfied by *sql.DB. Intended for health check endpoints.
type Pinger interface {
	PingContext(ctx context.Context) error
}
