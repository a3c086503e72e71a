// Package analysis defines the per-cycle history records written after
// every completed reconciliation pass.
package analysis

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an analysis record does not exist.
var ErrNotFound = errors.New("analysis not found")

// Record summarizes one completed reconciliation pass for one zone.
type Record struct {
	ID      string `json:"id"`
	ZoneID  string `json:"zone_id"`
	CycleID string `json:"cycle_id"`

	Detected      int `json:"detected"`
	Created       int `json:"created"`
	Reinforced    int `json:"reinforced"`
	AutoCompleted int `json:"auto_completed"`

	// CleanlinessScore is carried through from the vision collaborator
	// when provided; -1 when absent.
	CleanlinessScore float64 `json:"cleanliness_score"`

	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store defines the interface for analysis history persistence.
type Store interface {
	// Create persists a new analysis record. The store populates ID and
	// CreatedAt if not already set.
	Create(ctx context.Context, r *Record) error

	// List returns a zone's records ordered by created_at DESC, newest
	// first, up to limit (0 = unlimited).
	List(ctx context.Context, zoneID string, limit int) ([]Record, error)

	// Latest returns the zone's most recent record.
	// Returns ErrNotFound when the zone has never been analyzed.
	Latest(ctx context.Context, zoneID string) (Record, error)
}
