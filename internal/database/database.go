package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DefaultDSN keeps all tables in memory for the lifetime of the process.
const DefaultDSN = ":memory:"

// Open opens the sqlite database at dsn and ensures the schema exists.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Each connection to :memory: is its own database, so pin the pool to one.
	db.SetMaxOpenConns(1)

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the location tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			sub_locations TEXT NOT NULL DEFAULT '[]',
			parking TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_locations_name ON locations(name);
		CREATE INDEX IF NOT EXISTS idx_locations_coords ON locations(latitude, longitude);
	`)
	if err != nil {
		return fmt.Errorf("creating locations table: %w", err)
	}

	return nil
}
