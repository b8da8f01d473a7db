package database

import (
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Supported sql drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config selects the database backend
type Config struct {
	Driver string
	DSN    string // File path for SQLite, connection URL for PostgreSQL
}

// Connect opens the database and makes sure the schema exists
func Connect(cfg Config) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrap(err, "failed to create data directory")
			}
		}
	case DriverPostgres:
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := []struct {
		name  string
		query string
	}{
		{"learnable_items table", `
			CREATE TABLE IF NOT EXISTS learnable_items (
				id TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				level TEXT NOT NULL,
				term TEXT NOT NULL,
				reading TEXT NOT NULL DEFAULT '',
				meaning TEXT NOT NULL DEFAULT '',
				examples TEXT NOT NULL DEFAULT '[]',
				mastered BOOLEAN NOT NULL DEFAULT FALSE,
				last_reviewed TIMESTAMP NULL,
				next_review TIMESTAMP NULL,
				ease_factor DOUBLE PRECISION NULL,
				interval_days INTEGER NULL,
				repetitions INTEGER NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"by-level index", `CREATE INDEX IF NOT EXISTS idx_learnable_items_level ON learnable_items (kind, level)`},
		{"by-mastered index", `CREATE INDEX IF NOT EXISTS idx_learnable_items_mastered ON learnable_items (kind, mastered)`},
		{"app_state table", `
			CREATE TABLE IF NOT EXISTS app_state (
				state_key TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			return errors.Wrapf(err, "failed to create %s", stmt.name)
		}
	}
	return nil
}
