// Package store keeps per-trigger replacement statistics in SQLite.
//
// Only trigger names, counts and timestamps are stored. Typed text and
// replacement text never reach the database.
package store

import "time"

// TriggerCount is the usage of one trigger.
type TriggerCount struct {
	Trigger  string
	Count    int64
	LastUsed time.Time
}

// DayCount is the number of replacements made on one local calendar day.
type DayCount struct {
	Day   string // YYYY-MM-DD
	Count int64
}

// Hit is a single replacement waiting to be written.
type Hit struct {
	Trigger string
	At      time.Time
}

// dayKey formats t as the local calendar day used by the daily table.
func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
