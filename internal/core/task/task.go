// Package task defines the tracked cleaning task domain model.
package task

import "time"

// Status represents the lifecycle state of a task. Every status except
// pending is terminal: once a task leaves pending it accepts no further
// engine mutation.
type Status string

const (
	StatusPending Status = "pending"
	// StatusCompleted is a user-confirmed completion.
	StatusCompleted Status = "completed"
	// StatusAutoCompleted is an engine-confirmed completion, applied when a
	// completion rule fires with confidence at or above the zone's floor.
	StatusAutoCompleted Status = "auto_completed"
	StatusIgnored       Status = "ignored"
	StatusCancelled     Status = "cancelled"
)

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusAutoCompleted, StatusIgnored, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s != StatusPending && s.IsValid()
}

// Priority levels derived from description keywords at creation.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Task represents a single tracked cleaning item for one zone. The
// description is immutable after creation; reinforcement updates the
// detection fields only.
type Task struct {
	ID               string  `json:"id"`
	ZoneID           string  `json:"zone_id"`
	Description      string  `json:"description"`
	Status           Status  `json:"status"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Priority         int     `json:"priority"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	DetectionCount   int     `json:"detection_count"`

	// CompletionReason and CompletionConfidence are set only for
	// auto_completed tasks.
	CompletionReason     string  `json:"completion_reason,omitempty"`
	CompletionConfidence float64 `json:"completion_confidence,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	LastDetectedAt time.Time  `json:"last_detected_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Age returns how long the task has existed relative to now.
func (t *Task) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// Open reports whether the task is still pending.
func (t *Task) Open() bool {
	return t.Status == StatusPending
}
