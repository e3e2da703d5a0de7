package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite statistics database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const upsertTrigger = `
	INSERT INTO trigger_counts (trigger, count, first_used, last_used)
	VALUES (?, 1, ?, ?)
	ON CONFLICT(trigger) DO UPDATE SET
		count = count + 1,
		last_used = max(last_used, excluded.last_used)`

const upsertDay = `
	INSERT INTO daily_counts (day, trigger, count)
	VALUES (?, ?, 1)
	ON CONFLICT(day, trigger) DO UPDATE SET count = count + 1`

// Record counts one replacement of trigger at the given time.
func (s *Store) Record(trigger string, at time.Time) error {
	return s.RecordBatch([]Hit{{Trigger: trigger, At: at}})
}

// RecordBatch counts every hit in a single transaction.
func (s *Store) RecordBatch(hits []Hit) error {
	if len(hits) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	triggerStmt, err := tx.Prepare(upsertTrigger)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer triggerStmt.Close()

	dayStmt, err := tx.Prepare(upsertDay)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer dayStmt.Close()

	for _, h := range hits {
		ns := h.At.UnixNano()
		if _, err := triggerStmt.Exec(h.Trigger, ns, ns); err != nil {
			return fmt.Errorf("record trigger: %w", err)
		}
		if _, err := dayStmt.Exec(dayKey(h.At), h.Trigger); err != nil {
			return fmt.Errorf("record day: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Counts returns every trigger's usage, most used first.
func (s *Store) Counts() ([]TriggerCount, error) {
	rows, err := s.db.Query(`
		SELECT trigger, count, last_used
		FROM trigger_counts
		ORDER BY count DESC, trigger ASC`)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	var out []TriggerCount
	for rows.Next() {
		var c TriggerCount
		var lastUsed int64
		if err := rows.Scan(&c.Trigger, &c.Count, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		c.LastUsed = time.Unix(0, lastUsed)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return out, nil
}

// Count returns the usage of one trigger. A trigger never used returns nil.
func (s *Store) Count(trigger string) (*TriggerCount, error) {
	c := TriggerCount{Trigger: trigger}
	var lastUsed int64

	err := s.db.QueryRow(`
		SELECT count, last_used FROM trigger_counts WHERE trigger = ?`, trigger,
	).Scan(&c.Count, &lastUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count: %w", err)
	}

	c.LastUsed = time.Unix(0, lastUsed)
	return &c, nil
}

// Daily returns per-day totals for the days on or after since, oldest first.
func (s *Store) Daily(since time.Time) ([]DayCount, error) {
	rows, err := s.db.Query(`
		SELECT day, SUM(count)
		FROM daily_counts
		WHERE day >= ?
		GROUP BY day
		ORDER BY day ASC`, dayKey(since))
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily counts: %w", err)
	}
	return out, nil
}

// Total returns the number of replacements ever recorded.
func (s *Store) Total() (int64, error) {
	var total int64
	if err := s.db.QueryRow(`SELECT COALESCE(SUM(count), 0) FROM trigger_counts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("get total: %w", err)
	}
	return total, nil
}

// Reset deletes all statistics.
func (s *Store) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM trigger_counts; DELETE FROM daily_counts;`); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	return nil
}
