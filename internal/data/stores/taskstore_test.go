package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(zoneID, desc string, conf float64) task.Task {
	return task.Task{
		ZoneID:           zoneID,
		Description:      desc,
		ConfidenceScore:  conf,
		Priority:         task.PriorityMedium,
		EstimatedMinutes: 5,
	}
}

func TestTaskStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		tk := newTask(z.ID, "wash the dishes", 0.85)
		require.NoError(t, store.Create(ctx, &tk), "Create")
		assert.NotEmpty(t, tk.ID, "ID populated")
		assert.False(t, tk.CreatedAt.IsZero(), "CreatedAt populated")

		got, err := store.Get(ctx, tk.ID)
		require.NoError(t, err, "Get")
		assert.Equal(t, "wash the dishes", got.Description)
		assert.Equal(t, task.StatusPending, got.Status)
		assert.Equal(t, 1, got.DetectionCount)
		assert.InDelta(t, 0.85, got.ConfidenceScore, 1e-9)
	})

	t.Run("get not found", func(t *testing.T) {
		database := newTestDB(t)
		store := NewTaskStore(database)

		_, err := store.Get(ctx, "nonexistent")
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("list filters by zone and status", func(t *testing.T) {
		database := newTestDB(t)
		kitchen := seedZone(t, database, "kitchen")
		bedroom := seedZone(t, database, "bedroom")
		store := NewTaskStore(database)

		t1 := newTask(kitchen.ID, "wash the dishes", 0.8)
		t2 := newTask(kitchen.ID, "wipe the counter", 0.7)
		t3 := newTask(bedroom.ID, "make the bed", 0.9)
		require.NoError(t, store.Create(ctx, &t1))
		require.NoError(t, store.Create(ctx, &t2))
		require.NoError(t, store.Create(ctx, &t3))
		require.NoError(t, store.SetStatus(ctx, t2.ID, task.StatusCompleted, time.Now()))

		all, err := store.List(ctx, task.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		kitchenOnly, err := store.List(ctx, task.ListFilter{ZoneID: kitchen.ID})
		require.NoError(t, err)
		assert.Len(t, kitchenOnly, 2)

		completed, err := store.List(ctx, task.ListFilter{ZoneID: kitchen.ID, Status: task.StatusCompleted})
		require.NoError(t, err)
		require.Len(t, completed, 1)
		assert.Equal(t, t2.ID, completed[0].ID)
	})

	t.Run("list open is oldest first", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		base := time.Now().Add(-time.Hour)
		older := newTask(z.ID, "wash the dishes", 0.8)
		older.CreatedAt = base
		newer := newTask(z.ID, "wipe the counter", 0.7)
		newer.CreatedAt = base.Add(time.Minute)
		require.NoError(t, store.Create(ctx, &newer))
		require.NoError(t, store.Create(ctx, &older))

		open, err := store.ListOpen(ctx, z.ID)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, older.ID, open[0].ID)
		assert.Equal(t, newer.ID, open[1].ID)
	})

	t.Run("apply cycle", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		existing := newTask(z.ID, "wash the dishes", 0.8)
		resolved := newTask(z.ID, "wipe the counter", 0.7)
		require.NoError(t, store.Create(ctx, &existing))
		require.NoError(t, store.Create(ctx, &resolved))

		now := time.Now()
		created := newTask(z.ID, "take out the trash", 0.9)

		err := store.ApplyCycle(ctx, task.ApplyPlan{
			Create: []task.Task{created},
			Reinforce: []task.Reinforcement{
				{ID: existing.ID, NewConfidence: 0.83, DetectedAt: now},
			},
			Resolve: []task.Resolution{
				{ID: resolved.ID, Confidence: 0.95, Reason: "completed_high_confidence", ResolvedAt: now},
			},
		})
		require.NoError(t, err, "ApplyCycle")

		open, err := store.ListOpen(ctx, z.ID)
		require.NoError(t, err)
		assert.Len(t, open, 2, "existing plus created")

		got, err := store.Get(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.DetectionCount)
		assert.InDelta(t, 0.83, got.ConfidenceScore, 1e-9)

		done, err := store.Get(ctx, resolved.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusAutoCompleted, done.Status)
		assert.Equal(t, "completed_high_confidence", done.CompletionReason)
		assert.InDelta(t, 0.95, done.CompletionConfidence, 1e-9)
		require.NotNil(t, done.CompletedAt)
	})

	t.Run("apply cycle rolls back on terminal target", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		terminal := newTask(z.ID, "wash the dishes", 0.8)
		require.NoError(t, store.Create(ctx, &terminal))
		require.NoError(t, store.SetStatus(ctx, terminal.ID, task.StatusIgnored, time.Now()))

		extra := newTask(z.ID, "take out the trash", 0.9)
		err := store.ApplyCycle(ctx, task.ApplyPlan{
			Create: []task.Task{extra},
			Reinforce: []task.Reinforcement{
				{ID: terminal.ID, NewConfidence: 0.85, DetectedAt: time.Now()},
			},
		})
		require.ErrorIs(t, err, task.ErrTerminalStatus)

		// The create in the same plan must not have landed.
		open, err := store.ListOpen(ctx, z.ID)
		require.NoError(t, err)
		assert.Empty(t, open)
	})

	t.Run("set status rejects terminal task", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		tk := newTask(z.ID, "wash the dishes", 0.8)
		require.NoError(t, store.Create(ctx, &tk))
		require.NoError(t, store.SetStatus(ctx, tk.ID, task.StatusCompleted, time.Now()))

		err := store.SetStatus(ctx, tk.ID, task.StatusCancelled, time.Now())
		assert.ErrorIs(t, err, task.ErrTerminalStatus)

		err = store.SetStatus(ctx, "nonexistent", task.StatusCompleted, time.Now())
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("reopen", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		tk := newTask(z.ID, "wash the dishes", 0.8)
		require.NoError(t, store.Create(ctx, &tk))

		now := time.Now()
		require.NoError(t, store.ApplyCycle(ctx, task.ApplyPlan{
			Resolve: []task.Resolution{
				{ID: tk.ID, Confidence: 0.9, Reason: "not_detected", ResolvedAt: now},
			},
		}))

		require.NoError(t, store.Reopen(ctx, tk.ID), "Reopen")

		got, err := store.Get(ctx, tk.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusPending, got.Status)
		assert.Empty(t, got.CompletionReason)
		assert.Zero(t, got.CompletionConfidence)
		assert.Nil(t, got.CompletedAt)

		// Only auto_completed tasks can be reopened.
		other := newTask(z.ID, "wipe the counter", 0.7)
		require.NoError(t, store.Create(ctx, &other))
		require.NoError(t, store.SetStatus(ctx, other.ID, task.StatusCompleted, time.Now()))
		assert.ErrorIs(t, store.Reopen(ctx, other.ID), task.ErrTerminalStatus)

		assert.ErrorIs(t, store.Reopen(ctx, "nonexistent"), task.ErrNotFound)
	})

	t.Run("count by status", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		t1 := newTask(z.ID, "wash the dishes", 0.8)
		t2 := newTask(z.ID, "wipe the counter", 0.7)
		t3 := newTask(z.ID, "take out the trash", 0.9)
		require.NoError(t, store.Create(ctx, &t1))
		require.NoError(t, store.Create(ctx, &t2))
		require.NoError(t, store.Create(ctx, &t3))
		require.NoError(t, store.SetStatus(ctx, t3.ID, task.StatusIgnored, time.Now()))

		counts, err := store.CountByStatus(ctx, z.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[task.StatusPending])
		assert.Equal(t, int64(1), counts[task.StatusIgnored])
	})

	t.Run("oldest pending", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewTaskStore(database)

		_, err := store.OldestPending(ctx, z.ID)
		assert.ErrorIs(t, err, task.ErrNotFound, "empty zone")

		base := time.Now().Add(-time.Hour)
		older := newTask(z.ID, "wash the dishes", 0.8)
		older.CreatedAt = base
		newer := newTask(z.ID, "wipe the counter", 0.7)
		newer.CreatedAt = base.Add(time.Minute)
		require.NoError(t, store.Create(ctx, &newer))
		require.NoError(t, store.Create(ctx, &older))

		got, err := store.OldestPending(ctx, z.ID)
		require.NoError(t, err)
		assert.Equal(t, older.ID, got.ID)
	})
}
