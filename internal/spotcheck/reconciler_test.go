package spotcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/core/eventbus"
	"github.com/colonyops/spotcheck/internal/core/ignore"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/threshold"
)

// failingAnalysisStore rejects every history insert.
type failingAnalysisStore struct {
	analysis.Store
}

func (failingAnalysisStore) Create(context.Context, *analysis.Record) error {
	return errors.New("disk full")
}

func TestReconciler_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("rephrased detection reinforces instead of duplicating", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "bedroom")
		r := f.newReconciler()

		open := task.Task{
			ZoneID:          z.ID,
			Description:     "pick up shirt from floor",
			ConfidenceScore: 0.8,
		}
		require.NoError(t, f.tasks.Create(ctx, &open))

		result, err := r.Run(ctx, z, []task.Detection{
			{Description: "pick up the red shirt from the floor", Confidence: 0.9},
		}, -1)
		require.NoError(t, err, "Run")

		assert.Empty(t, result.Created, "no duplicate task")
		require.Len(t, result.ReinforcedIDs, 1)
		assert.Equal(t, open.ID, result.ReinforcedIDs[0])

		got, err := f.tasks.Get(ctx, open.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.DetectionCount)
		assert.InDelta(t, 0.7*0.8+0.3*0.9, got.ConfidenceScore, 1e-9)

		f.bus.AssertPublished(t, eventbus.EventTaskReinforced)
		f.bus.AssertPublished(t, eventbus.EventAnalysisCompleted)
	})

	t.Run("unknown detection creates a task", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := f.newReconciler()

		result, err := r.Run(ctx, z, []task.Detection{
			{Description: "wipe kitchen counter", Confidence: 0.9},
		}, -1)
		require.NoError(t, err, "Run")

		require.Len(t, result.Created, 1)
		assert.Empty(t, result.ReinforcedIDs)
		assert.Empty(t, result.AutoCompleted)

		got, err := f.tasks.Get(ctx, result.Created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "wipe kitchen counter", got.Description)
		assert.Equal(t, task.StatusPending, got.Status)
		assert.Equal(t, 1, got.DetectionCount)
		assert.Equal(t, task.PriorityMedium, got.Priority, `"wipe" is a medium-priority keyword`)
		assert.Equal(t, 5, got.EstimatedMinutes)
		// detectionConfidence scaled by specificity weighting stays below raw confidence.
		assert.Less(t, got.ConfidenceScore, 0.9)
		assert.Greater(t, got.ConfidenceScore, 0.9*0.8)

		f.bus.AssertPublished(t, eventbus.EventTaskCreated)
	})

	t.Run("consistently detected task auto-completes when absent", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := f.newReconciler()

		open := task.Task{
			ZoneID:          z.ID,
			Description:     "pick up shirt from floor",
			ConfidenceScore: 0.85,
			DetectionCount:  3,
		}
		require.NoError(t, f.tasks.Create(ctx, &open))

		result, err := r.Run(ctx, z, nil, -1)
		require.NoError(t, err, "Run")

		require.Len(t, result.AutoCompleted, 1)
		assert.Equal(t, open.ID, result.AutoCompleted[0].ID)
		assert.InDelta(t, 0.9, result.AutoCompleted[0].Confidence, 1e-9)
		assert.Equal(t, "consistently detected before, absent now", result.AutoCompleted[0].Reason)

		got, err := f.tasks.Get(ctx, open.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusAutoCompleted, got.Status)

		outcomes, err := f.outcomes.ListSince(ctx, z.ID, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, outcomes, 1, "outcome recorded for the adaptor")
		assert.Equal(t, open.ID, outcomes[0].TaskID)
		assert.False(t, outcomes[0].Reverted)

		f.bus.AssertPublished(t, eventbus.EventTaskAutoCompleted)
	})

	t.Run("rule below resolution floor leaves task pending", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := f.newReconciler()

		ths := threshold.Defaults(z.ID)
		ths.ResolutionFloor = 0.8
		ths.AdjustedAt = time.Now()
		require.NoError(t, f.thresholds.Put(ctx, ths))

		open := task.Task{
			ZoneID:          z.ID,
			Description:     "organize bookshelf",
			ConfidenceScore: 0.5,
			DetectionCount:  1,
			CreatedAt:       time.Now().Add(-10 * 24 * time.Hour),
		}
		require.NoError(t, f.tasks.Create(ctx, &open))

		result, err := r.Run(ctx, z, nil, -1)
		require.NoError(t, err, "Run")

		// Rule 3 fires at 0.7 but the floor is 0.8.
		assert.Empty(t, result.AutoCompleted)

		got, err := f.tasks.Get(ctx, open.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusPending, got.Status)
	})

	t.Run("invalid detection aborts with no state mutation", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := f.newReconciler()

		open := task.Task{
			ZoneID:          z.ID,
			Description:     "wash the dishes",
			ConfidenceScore: 0.9,
			DetectionCount:  2,
		}
		require.NoError(t, f.tasks.Create(ctx, &open))

		_, err := r.Run(ctx, z, []task.Detection{
			{Description: "wipe kitchen counter", Confidence: 1.5},
		}, -1)
		require.ErrorIs(t, err, task.ErrInvalidInput)

		// The open task was a candidate for auto-completion; the abort
		// must have left it untouched.
		got, err := f.tasks.Get(ctx, open.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusPending, got.Status)
		assert.Equal(t, 2, got.DetectionCount)

		all, err := f.tasks.List(ctx, task.ListFilter{ZoneID: z.ID})
		require.NoError(t, err)
		assert.Len(t, all, 1, "no task created")
	})

	t.Run("ignore rules suppress detections and count usage", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := f.newReconciler()

		rule := ignore.Rule{
			ZoneID:  z.ID,
			Type:    ignore.TypeKeyword,
			Value:   "decoration",
			Enabled: true,
		}
		require.NoError(t, f.rules.Create(ctx, &rule))

		result, err := r.Run(ctx, z, []task.Detection{
			{Description: "straighten the decoration on the shelf", Confidence: 0.9},
			{Description: "wipe kitchen counter", Confidence: 0.8},
		}, -1)
		require.NoError(t, err, "Run")

		require.Len(t, result.Created, 1, "suppressed detection never becomes a task")
		assert.Equal(t, "wipe kitchen counter", result.Created[0].Description)

		got, err := f.rules.Get(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.UsageCount)
	})

	t.Run("records analysis history", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := f.newReconciler()

		result, err := r.Run(ctx, z, []task.Detection{
			{Description: "wipe kitchen counter", Confidence: 0.8},
		}, 0.65)
		require.NoError(t, err, "Run")

		rec, err := f.analyses.Latest(ctx, z.ID)
		require.NoError(t, err, "Latest")
		assert.Equal(t, result.CycleID, rec.CycleID)
		assert.Equal(t, 1, rec.Detected)
		assert.Equal(t, 1, rec.Created)
		assert.InDelta(t, 0.65, rec.CleanlinessScore, 1e-9)
	})

	t.Run("failed history write does not fail a committed cycle", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := NewReconciler(f.tasks, f.thresholds, f.rules, f.outcomes,
			failingAnalysisStore{f.analyses}, f.bus.EventBus, zerolog.Nop())

		result, err := r.Run(ctx, z, []task.Detection{
			{Description: "wipe kitchen counter", Confidence: 0.9},
		}, -1)
		require.NoError(t, err, "task mutations committed; history is best-effort")
		require.Len(t, result.Created, 1)

		got, err := f.tasks.Get(ctx, result.Created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusPending, got.Status)

		f.bus.AssertPublished(t, eventbus.EventTaskCreated)
		f.bus.AssertPublished(t, eventbus.EventAnalysisCompleted)
	})

	t.Run("detection count accumulates across cycles", func(t *testing.T) {
		f := newFixture(t)
		z := f.seedZone(t, "kitchen")
		r := f.newReconciler()

		first, err := r.Run(ctx, z, []task.Detection{
			{Description: "wipe kitchen counter", Confidence: 0.8},
		}, -1)
		require.NoError(t, err)
		require.Len(t, first.Created, 1)
		id := first.Created[0].ID

		for range 3 {
			_, err := r.Run(ctx, z, []task.Detection{
				{Description: "wipe kitchen counter", Confidence: 0.8},
			}, -1)
			require.NoError(t, err)
		}

		got, err := f.tasks.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 4, got.DetectionCount, "1 create + 3 reinforcements")
	})
}
