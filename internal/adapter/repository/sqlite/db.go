// Package sqlite stores assets in a local SQLite database file.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/simaogato/patrimony-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/patrimony-backend/internal/domain"
)

// Dialect is the SQLite flavour of the SQL asset store
var Dialect = sqlstore.Dialect{
	Name:              "sqlite",
	IsUniqueViolation: isUniqueViolation,
}

// Open opens (and migrates) the SQLite database at path.
// Use ":memory:" for a throwaway database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time, and a single connection keeps ":memory:" databases alive
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sql.DB) domain.AssetRepository {
	return sqlstore.NewAssetRepository(db, Dialect)
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		category TEXT NOT NULL,
		currency TEXT NOT NULL,
		current_value TEXT,
		acquisition_value TEXT,
		acquisition_date TEXT,
		last_update_date TEXT,
		attributes TEXT NOT NULL DEFAULT '{}',
		version INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_owner_id ON assets(owner_id);

	CREATE TABLE IF NOT EXISTS asset_valuations (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		value TEXT NOT NULL,
		valuation_date TEXT NOT NULL,
		currency TEXT NOT NULL,
		source TEXT NOT NULL,
		UNIQUE (asset_id, seq)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
