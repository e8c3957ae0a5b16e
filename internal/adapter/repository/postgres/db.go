package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=patrimony sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the asset tables when they do not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id                TEXT PRIMARY KEY,
	owner_id          TEXT NOT NULL,
	name              TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	type              TEXT NOT NULL,
	category          TEXT NOT NULL,
	currency          TEXT NOT NULL,
	current_value     NUMERIC,
	acquisition_value NUMERIC,
	acquisition_date  TIMESTAMPTZ,
	last_update_date  TIMESTAMPTZ,
	attributes        TEXT NOT NULL DEFAULT '{}',
	version           BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assets_owner_id ON assets (owner_id);

CREATE TABLE IF NOT EXISTS asset_valuations (
	id             TEXT PRIMARY KEY,
	asset_id       TEXT NOT NULL REFERENCES assets (id) ON DELETE CASCADE,
	seq            INTEGER NOT NULL,
	value          NUMERIC NOT NULL,
	valuation_date TIMESTAMPTZ NOT NULL,
	currency       TEXT NOT NULL,
	source         TEXT NOT NULL,
	UNIQUE (asset_id, seq)
);
`
