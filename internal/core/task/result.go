package task

import "time"

// CreatedTask identifies one task created during a cycle.
type CreatedTask struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// AnalysisResult is the structured outcome of one reconciliation pass
// for one zone. It is what the engine hands to the notification and
// analytics collaborators; counts and ids only, never formatted text.
type AnalysisResult struct {
	ZoneID  string    `json:"zone_id"`
	CycleID string    `json:"cycle_id"`
	RanAt   time.Time `json:"ran_at"`

	Detected      int           `json:"detected"`
	Created       []CreatedTask `json:"created"`
	ReinforcedIDs []string      `json:"reinforced_ids"`
	AutoCompleted []Resolution  `json:"auto_completed"`

	// CleanlinessScore is carried through from the vision collaborator
	// when provided; -1 when absent.
	CleanlinessScore float64 `json:"cleanliness_score"`

	Duration time.Duration `json:"duration"`
}
