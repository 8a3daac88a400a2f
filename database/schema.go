package database

import (
	"database/sql"
	"fmt"
)

// initSchema creates the entity store tables when missing.
func initSchema(conn *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS owners (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			legal_name TEXT NOT NULL DEFAULT '',
			tax_id TEXT NOT NULL DEFAULT '',
			tax_condition TEXT NOT NULL DEFAULT '',
			province TEXT NOT NULL DEFAULT '',
			locality TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			client_type TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			number TEXT NOT NULL,
			normalized_number TEXT NOT NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			client_id TEXT NOT NULL DEFAULT '',
			issue_date TEXT NOT NULL DEFAULT '',
			amount TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS import_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_uuid TEXT NOT NULL,
			kind TEXT NOT NULL,
			total INTEGER NOT NULL DEFAULT 0,
			created INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			unresolved INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_normalized_number ON invoices(normalized_number)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_tax_id ON clients(tax_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_display_name ON clients(display_name)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}
