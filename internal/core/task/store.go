package task

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrTerminalStatus is returned when a transition is attempted on a
	// task whose status is already terminal.
	ErrTerminalStatus = errors.New("task status is terminal")
	// ErrInvalidInput is returned for malformed detections or confidence
	// values outside [0, 1]. A cycle that hits it aborts with no state
	// mutation.
	ErrInvalidInput = errors.New("invalid input")
)

// ListFilter controls which tasks are returned by List.
type ListFilter struct {
	ZoneID string // empty means all zones
	Status Status // empty means all statuses
}

// Reinforcement carries the field updates for one re-detected task.
type Reinforcement struct {
	ID            string
	NewConfidence float64
	DetectedAt    time.Time
}

// Resolution carries an engine-driven auto-completion for one task.
type Resolution struct {
	ID         string
	Confidence float64
	Reason     string
	ResolvedAt time.Time
}

// ApplyPlan is the full set of task mutations for one reconciliation
// cycle. Stores apply it transactionally as a unit: either every
// mutation lands or none do.
type ApplyPlan struct {
	Create    []Task
	Reinforce []Reinforcement
	Resolve   []Resolution
}

// Empty reports whether the plan contains no mutations.
func (p ApplyPlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Reinforce) == 0 && len(p.Resolve) == 0
}

// Store defines the interface for task persistence.
type Store interface {
	// Create persists a new task. The store populates ID and CreatedAt
	// if not already set.
	Create(ctx context.Context, t *Task) error

	// Get returns a single task by ID.
	// Returns ErrNotFound if the task does not exist.
	Get(ctx context.Context, id string) (Task, error)

	// List returns tasks matching the filter, ordered by created_at DESC.
	List(ctx context.Context, filter ListFilter) ([]Task, error)

	// ListOpen returns the zone's pending tasks, ordered by created_at ASC.
	ListOpen(ctx context.Context, zoneID string) ([]Task, error)

	// ApplyCycle applies one cycle's mutations in a single transaction.
	// Reinforce increments detection_count; Resolve sets auto_completed
	// with reason and confidence. Pending-only rows are touched: a task
	// already in a terminal status fails the whole plan with
	// ErrTerminalStatus.
	ApplyCycle(ctx context.Context, plan ApplyPlan) error

	// SetStatus applies a user-driven transition (completed, ignored,
	// cancelled). Returns ErrTerminalStatus unless the task is pending,
	// ErrNotFound if it does not exist.
	SetStatus(ctx context.Context, id string, status Status, at time.Time) error

	// Reopen returns an auto_completed task to pending, clearing its
	// completion fields. Returns ErrTerminalStatus for any other status.
	Reopen(ctx context.Context, id string) error

	// CountByStatus returns task counts per status for a zone.
	CountByStatus(ctx context.Context, zoneID string) (map[Status]int64, error)

	// OldestPending returns the zone's oldest pending task.
	// Returns ErrNotFound when the zone has no pending tasks.
	OldestPending(ctx context.Context, zoneID string) (Task, error)
}
