package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Migration is one schema change with its inverse.
type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// migrations are applied in order; versions must increase.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema with per-trigger counts",
		Up:          migrationV1Up,
		Down:        migrationV1Down,
	},
	{
		Version:     2,
		Description: "Add daily_counts table for per-day totals",
		Up:          migrationV2Up,
		Down:        migrationV2Down,
	},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS trigger_counts (
    trigger     TEXT PRIMARY KEY,
    count       INTEGER NOT NULL DEFAULT 0,
    first_used  INTEGER NOT NULL,
    last_used   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trigger_counts_count ON trigger_counts(count DESC);
`

const migrationV1Down = `
DROP INDEX IF EXISTS idx_trigger_counts_count;
DROP TABLE IF EXISTS trigger_counts;
`

const migrationV2Up = `
CREATE TABLE IF NOT EXISTS daily_counts (
    day         TEXT NOT NULL,
    trigger     TEXT NOT NULL,
    count       INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (day, trigger)
);
`

const migrationV2Down = `
DROP TABLE IF EXISTS daily_counts;
`

// MigrateDB brings the schema up to date. The applied version is kept in
// SQLite's user_version header, so an empty file starts at zero.
func MigrateDB(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := step(db, m.Version, m.Up); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	return nil
}

// step runs script and records version in one transaction.
func step(db *sql.DB, version int, script string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	// PRAGMA takes no bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}

func schemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// LatestVersion is the version MigrateDB migrates to.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RollbackMigration undoes the most recent migration.
func RollbackMigration(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	if current == 0 {
		return errors.New("no migrations to roll back")
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if m.Version != current {
			continue
		}
		prev := 0
		if i > 0 {
			prev = migrations[i-1].Version
		}
		if err := step(db, prev, m.Down); err != nil {
			return fmt.Errorf("roll back migration %d: %w", m.Version, err)
		}
		return nil
	}
	return fmt.Errorf("migration %d not found", current)
}

// ValidateSchema checks that all expected tables exist.
func ValidateSchema(db *sql.DB) error {
	for _, table := range []string{"trigger_counts", "daily_counts"} {
		var n int
		err := db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if n == 0 {
			return fmt.Errorf("missing table %s", table)
		}
	}
	return nil
}
