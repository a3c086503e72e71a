package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create and latest", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewAnalysisStore(database)

		_, err := store.Latest(ctx, z.ID)
		assert.ErrorIs(t, err, analysis.ErrNotFound, "never analyzed")

		now := time.Now()
		older := analysis.Record{
			ZoneID: z.ID, CycleID: "cycle-1",
			Detected: 3, Created: 2, Reinforced: 1,
			CleanlinessScore: -1,
			Duration:         120 * time.Millisecond,
			CreatedAt:        now.Add(-time.Hour),
		}
		newer := analysis.Record{
			ZoneID: z.ID, CycleID: "cycle-2",
			Detected: 1, AutoCompleted: 2,
			CleanlinessScore: 0.8,
			Duration:         90 * time.Millisecond,
			CreatedAt:        now,
		}
		require.NoError(t, store.Create(ctx, &older))
		require.NoError(t, store.Create(ctx, &newer))

		got, err := store.Latest(ctx, z.ID)
		require.NoError(t, err, "Latest")
		assert.Equal(t, "cycle-2", got.CycleID)
		assert.Equal(t, 2, got.AutoCompleted)
		assert.InDelta(t, 0.8, got.CleanlinessScore, 1e-9)
		assert.Equal(t, 90*time.Millisecond, got.Duration)
	})

	t.Run("list newest first with limit", func(t *testing.T) {
		database := newTestDB(t)
		z := seedZone(t, database, "kitchen")
		store := NewAnalysisStore(database)

		now := time.Now()
		for i := range 3 {
			r := analysis.Record{
				ZoneID:           z.ID,
				CycleID:          "cycle",
				CleanlinessScore: -1,
				CreatedAt:        now.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, store.Create(ctx, &r))
		}

		all, err := store.List(ctx, z.ID, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt), "newest first")

		limited, err := store.List(ctx, z.ID, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})
}
