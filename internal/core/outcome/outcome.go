// Package outcome defines the auto-completion outcome records consumed
// by the threshold adaptor. Every engine-driven completion writes one
// record; a user reopening the task later flips its reverted flag.
package outcome

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an outcome record does not exist.
var ErrNotFound = errors.New("outcome not found")

// Record is one auto-completion outcome for one task.
type Record struct {
	ID         string    `json:"id"`
	ZoneID     string    `json:"zone_id"`
	TaskID     string    `json:"task_id"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`

	// Reverted is set when the user reopens the task, signalling the
	// auto-completion was wrong.
	Reverted   bool       `json:"reverted"`
	RevertedAt *time.Time `json:"reverted_at,omitempty"`
}

// Store defines the interface for outcome persistence.
type Store interface {
	// Create persists a new outcome record. The store populates ID and
	// CreatedAt if not already set.
	Create(ctx context.Context, r *Record) error

	// ListSince returns a zone's outcomes created at or after the cutoff,
	// ordered by created_at ASC.
	ListSince(ctx context.Context, zoneID string, cutoff time.Time) ([]Record, error)

	// MarkReverted flips the reverted flag on the latest outcome for the
	// task. Returns ErrNotFound when the task has no outcome record.
	MarkReverted(ctx context.Context, taskID string, at time.Time) error
}
