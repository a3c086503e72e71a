// Package stores provides SQLite-backed implementations of the domain
// store interfaces.
package stores

import (
	"database/sql"
	"strings"
	"time"
)

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

func toNullFloat(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func fromNullFloat(nf sql.NullFloat64) float64 {
	if !nf.Valid {
		return 0
	}
	return nf.Float64
}

// toNullTimeNs converts an optional time to unix nanoseconds.
func toNullTimeNs(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

// fromNullTimeNs converts a nullable unix-nanosecond column back to an
// optional time.
func fromNullTimeNs(ni sql.NullInt64) *time.Time {
	if !ni.Valid {
		return nil
	}
	t := time.Unix(0, ni.Int64)
	return &t
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
