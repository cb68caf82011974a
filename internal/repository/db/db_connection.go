package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates the SQLite record store at path and ensures the schema.
// Calling it again on the same file is harmless.
func InitDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create directory for %q: %w", path, err)
			}
		}
	}

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// One connection: writes are serialized by the caller anyway and
	// ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

// Times are stored as "YYYY-MM-DD HH:MM:SS" text so that string comparison
// in WHERE/ORDER BY is chronological.
const schemaTemperatureRecords = `
CREATE TABLE IF NOT EXISTS temperature_records (
    id INTEGER PRIMARY KEY,
    coke_oven INTEGER NOT NULL,
    time TEXT NOT NULL,
    machine_side REAL NOT NULL,
    coke_side REAL NOT NULL,
    UNIQUE(coke_oven, time)
);
`

const schemaOperationRecords = `
CREATE TABLE IF NOT EXISTS operation_records (
    id INTEGER PRIMARY KEY,
    coke_oven INTEGER NOT NULL,
    chamber TEXT NOT NULL,
    operation_type TEXT NOT NULL CHECK(operation_type IN ('LOAD', 'PUSH')),
    time TEXT NOT NULL,
    UNIQUE(coke_oven, chamber, time)
);
`

const schemaCokingCycles = `
CREATE TABLE IF NOT EXISTS coking_cycles (
    id INTEGER PRIMARY KEY,
    coke_oven INTEGER NOT NULL,
    chamber TEXT NOT NULL,
    loading_time TEXT NOT NULL,
    push_time TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL,
    duration_hhmm TEXT NOT NULL,
    avg_temp_machine REAL,
    avg_temp_coke REAL,
    UNIQUE(coke_oven, chamber, push_time)
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

const (
	indexTemperatureOvenTime = `CREATE INDEX IF NOT EXISTS idx_temp_oven_time ON temperature_records(coke_oven, time);`
	indexOperationsLookup    = `CREATE INDEX IF NOT EXISTS idx_ops_oven_chamber_time ON operation_records(coke_oven, chamber, time);`
	indexCyclesOvenChamber   = `CREATE INDEX IF NOT EXISTS idx_cycles_oven_chamber ON coking_cycles(coke_oven, chamber);`
)

// EnsureSchema applies every table and index in one transaction.
func EnsureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// no-op after Commit
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaTemperatureRecords,
		schemaOperationRecords,
		schemaCokingCycles,
		schemaUsers,
		indexTemperatureOvenTime,
		indexOperationsLookup,
		indexCyclesOvenChamber,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
