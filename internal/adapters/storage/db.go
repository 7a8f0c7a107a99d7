package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables. Sheets are the generic tabular substrate: a catalog row
	// per sheet plus one row per appended data row, cells as a JSON array in
	// header order.
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS sheet_catalog (
		name TEXT PRIMARY KEY,
		headers TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheet_row (
		id TEXT PRIMARY KEY,
		sheet_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		cells TEXT NOT NULL,
		appended_at TEXT NOT NULL,
		FOREIGN KEY (sheet_name) REFERENCES sheet_catalog(name)
	);

	CREATE INDEX IF NOT EXISTS idx_sheet_row_sheet
		ON sheet_row(sheet_name, position);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
