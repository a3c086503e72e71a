// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within spotcheck.
package eventbus

import (
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/threshold"
)

// Event identifies one event type on the bus.
type Event string

// All event types, sorted A-Z.
const (
	EventAnalysisCompleted  Event = "analysis.completed"
	EventTaskAutoCompleted  Event = "task.auto-completed"
	EventTaskCreated        Event = "task.created"
	EventTaskReinforced     Event = "task.reinforced"
	EventTaskReopened       Event = "task.reopened"
	EventThresholdsAdjusted Event = "thresholds.adjusted"
)

// TaskCreatedPayload is emitted when a reconciliation pass creates a task.
type TaskCreatedPayload struct {
	Task *task.Task
}

// TaskReinforcedPayload is emitted when a pass re-detects an open task.
type TaskReinforcedPayload struct {
	Task  *task.Task
	Score float64
}

// TaskAutoCompletedPayload is emitted when the engine resolves a task.
type TaskAutoCompletedPayload struct {
	Task       *task.Task
	Confidence float64
	Reason     string
}

// TaskReopenedPayload is emitted when a user reverts an auto-completion.
type TaskReopenedPayload struct {
	Task *task.Task
}

// AnalysisCompletedPayload is emitted after a pass finishes and persists.
type AnalysisCompletedPayload struct {
	Result *task.AnalysisResult
}

// ThresholdsAdjustedPayload is emitted when the adaptor writes new
// thresholds for a zone.
type ThresholdsAdjustedPayload struct {
	Thresholds threshold.Thresholds
}
