package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/task"
)

func TestEvaluator_Evaluate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		task    task.Task
		current []string
		floor   float64

		wantResolve    bool
		wantConfidence float64
		wantMeetsFloor bool
		wantRule       string
	}{
		{
			name: "repeat detection absent fires at 0.9",
			task: task.Task{
				Description:     "pick up shirt from floor",
				DetectionCount:  3,
				ConfidenceScore: 0.85,
				CreatedAt:       now.Add(-24 * time.Hour),
			},
			current:        nil,
			floor:          0.7,
			wantResolve:    true,
			wantConfidence: 0.9,
			wantMeetsFloor: true,
			wantRule:       "repeat_detection_absent",
		},
		{
			name: "high confidence absent fires at 0.8",
			task: task.Task{
				Description:     "wash the dishes in the sink",
				DetectionCount:  1,
				ConfidenceScore: 0.85,
				CreatedAt:       now.Add(-24 * time.Hour),
			},
			current:        []string{"fold laundry on the bed"},
			floor:          0.7,
			wantResolve:    true,
			wantConfidence: 0.8,
			wantMeetsFloor: true,
			wantRule:       "high_confidence_absent",
		},
		{
			name: "long standing absent fires at 0.7 but stays below floor 0.8",
			task: task.Task{
				Description:     "organize books on shelf",
				DetectionCount:  1,
				ConfidenceScore: 0.5,
				CreatedAt:       now.Add(-10 * 24 * time.Hour),
			},
			current:        nil,
			floor:          0.8,
			wantResolve:    true,
			wantConfidence: 0.7,
			wantMeetsFloor: false,
			wantRule:       "long_standing_absent",
		},
		{
			name: "still present when a similar detection exists",
			task: task.Task{
				Description:     "pick up shirt from floor",
				DetectionCount:  3,
				ConfidenceScore: 0.9,
				CreatedAt:       now.Add(-10 * 24 * time.Hour),
			},
			current:        []string{"pick up the shirt from the floor"},
			floor:          0.7,
			wantResolve:    false,
			wantConfidence: 0.0,
			wantMeetsFloor: false,
		},
		{
			name: "young low-signal task never resolves",
			task: task.Task{
				Description:     "wipe kitchen counter",
				DetectionCount:  1,
				ConfidenceScore: 0.5,
				CreatedAt:       now.Add(-24 * time.Hour),
			},
			current:        nil,
			floor:          0.7,
			wantResolve:    false,
			wantConfidence: 0.0,
			wantMeetsFloor: false,
		},
	}

	e := NewEvaluator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(&tt.task, tt.current, tt.floor, now)

			assert.Equal(t, tt.wantResolve, got.Resolve)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantMeetsFloor, got.MeetsFloor)
			assert.Equal(t, tt.wantRule, got.Rule)
			if !tt.wantResolve {
				assert.Equal(t, "still appears present", got.Reason)
			}
		})
	}
}

func TestEvaluator_RuleOrder(t *testing.T) {
	// A task that satisfies every rule's condition resolves via the
	// first rule, the strongest signal.
	now := time.Now()
	tsk := task.Task{
		Description:     "pick up shirt from floor",
		DetectionCount:  5,
		ConfidenceScore: 0.95,
		CreatedAt:       now.Add(-30 * 24 * time.Hour),
	}

	got := NewEvaluator().Evaluate(&tsk, nil, 0.7, now)

	require.True(t, got.Resolve)
	assert.Equal(t, "repeat_detection_absent", got.Rule)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
	assert.Equal(t, "consistently detected before, absent now", got.Reason)
}

func TestEvaluator_Deterministic(t *testing.T) {
	now := time.Now()
	tsk := task.Task{
		Description:     "wash the dishes in the sink",
		DetectionCount:  2,
		ConfidenceScore: 0.6,
		CreatedAt:       now.Add(-2 * 24 * time.Hour),
	}
	current := []string{"wipe kitchen counter", "fold laundry"}

	e := NewEvaluator()
	first := e.Evaluate(&tsk, current, 0.7, now)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, e.Evaluate(&tsk, current, 0.7, now))
	}
}
