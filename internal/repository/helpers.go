package repository

import (
	"database/sql"
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// parseNullableDate parses a sql.NullString into a time.Time using the
// calendar-date layout. Returns the zero time if the value is NULL,
// empty, or fails to parse.
func parseNullableDate(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(domain.DateLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullableDateToString converts a date to a value suitable for SQLite
// storage. Returns nil (SQL NULL) for the zero time.
func nullableDateToString(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(domain.DateLayout)
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
