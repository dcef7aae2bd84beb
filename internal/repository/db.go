package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// the import tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS import_batches (
			id TEXT PRIMARY KEY,
			connector_code TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			log TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_import_batches_connector ON import_batches(connector_code)`,
		`CREATE INDEX IF NOT EXISTS idx_import_batches_hash ON import_batches(file_hash)`,

		`CREATE TABLE IF NOT EXISTS import_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL REFERENCES import_batches(id),
			report_number TEXT NOT NULL,
			report_date DATETIME NOT NULL,
			total_amount TEXT NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT,
			invoice_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_import_rows_batch ON import_rows(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_import_rows_status ON import_rows(status)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
