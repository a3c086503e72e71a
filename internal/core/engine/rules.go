package engine

import (
	"time"

	"github.com/colonyops/spotcheck/internal/core/task"
)

// longStandingAge is how old a task must be before the long-standing
// rule considers it.
const longStandingAge = 7 * 24 * time.Hour

// Rule is one completion rule. Rules are evaluated in order and the
// first that fires wins. A rule fires when Condition holds for the task
// AND no current detection scores above MaxSimilarity against it.
type Rule struct {
	Name       string
	Reason     string
	Confidence float64

	// MaxSimilarity is the absence cutoff: similarity above it to any
	// current description means the task still appears present, and the
	// rule cannot fire.
	MaxSimilarity float64

	Condition func(t *task.Task, now time.Time) bool
}

// DefaultRules returns the ordered completion rule list.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:          "repeat_detection_absent",
			Reason:        "consistently detected before, absent now",
			Confidence:    0.9,
			MaxSimilarity: 0.6,
			Condition: func(t *task.Task, _ time.Time) bool {
				return t.DetectionCount >= 2
			},
		},
		{
			Name:          "high_confidence_absent",
			Reason:        "high-confidence task no longer detected",
			Confidence:    0.8,
			MaxSimilarity: 0.5,
			Condition: func(t *task.Task, _ time.Time) bool {
				return t.ConfidenceScore > 0.8
			},
		},
		{
			Name:          "long_standing_absent",
			Reason:        "long-standing task no longer detected",
			Confidence:    0.7,
			MaxSimilarity: 0.4,
			Condition: func(t *task.Task, now time.Time) bool {
				return t.Age(now) >= longStandingAge
			},
		},
	}
}

// Evaluation is the outcome of running the rule list against one
// unmatched open task.
type Evaluation struct {
	Rule       string  `json:"rule,omitempty"`
	Resolve    bool    `json:"resolve"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`

	// MeetsFloor reports whether the task may actually be marked
	// auto_completed: Resolve AND Confidence at or above the zone's
	// resolution confidence floor. When a rule fired below the floor
	// the task stays pending.
	MeetsFloor bool `json:"meets_floor"`
}

// Evaluator runs an ordered rule list. The zero value is not usable;
// construct with NewEvaluator.
type Evaluator struct {
	Rules []Rule
}

// NewEvaluator returns an evaluator with the default rule list.
func NewEvaluator() *Evaluator {
	return &Evaluator{Rules: DefaultRules()}
}

// Evaluate decides whether an unmatched open task should auto-resolve.
// The similarity of every current description against the task is
// computed once; each rule then combines its own condition with its
// absence cutoff. First firing rule wins. When no rule fires the task
// still appears present.
func (e *Evaluator) Evaluate(t *task.Task, current []string, floor float64, now time.Time) Evaluation {
	maxSim := 0.0
	for _, desc := range current {
		if s := Similarity(t.Description, desc); s > maxSim {
			maxSim = s
		}
	}

	for _, rule := range e.Rules {
		if maxSim > rule.MaxSimilarity {
			continue
		}
		if !rule.Condition(t, now) {
			continue
		}
		return Evaluation{
			Rule:       rule.Name,
			Resolve:    true,
			Confidence: rule.Confidence,
			Reason:     rule.Reason,
			MeetsFloor: rule.Confidence >= floor,
		}
	}

	return Evaluation{
		Resolve:    false,
		Confidence: 0.0,
		Reason:     "still appears present",
	}
}
