package threshold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/outcome"
)

func record(age time.Duration, reverted bool, now time.Time) outcome.Record {
	return outcome.Record{
		CreatedAt: now.Add(-age),
		Reverted:  reverted,
	}
}

func TestAdjust(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		outcomes []outcome.Record

		wantSimilarity float64
		wantFloor      float64
	}{
		{
			name:           "no outcomes reverts to defaults",
			outcomes:       nil,
			wantSimilarity: DefaultSimilarity,
			wantFloor:      DefaultResolutionFloor,
		},
		{
			name: "high accuracy lowers both thresholds",
			outcomes: []outcome.Record{
				record(time.Hour, false, now),
				record(2*time.Hour, false, now),
				record(3*time.Hour, false, now),
				record(4*time.Hour, false, now),
			},
			wantSimilarity: DefaultSimilarity - 0.1,
			wantFloor:      DefaultResolutionFloor - 0.1,
		},
		{
			name: "low accuracy raises both thresholds",
			outcomes: []outcome.Record{
				record(time.Hour, true, now),
				record(2*time.Hour, true, now),
				record(3*time.Hour, false, now),
			},
			wantSimilarity: DefaultSimilarity + 0.1,
			wantFloor:      DefaultResolutionFloor + 0.1,
		},
		{
			name: "middling accuracy reverts to defaults",
			outcomes: []outcome.Record{
				record(time.Hour, true, now),
				record(2*time.Hour, false, now),
				record(3*time.Hour, false, now),
				record(4*time.Hour, false, now),
				record(5*time.Hour, false, now),
			},
			wantSimilarity: DefaultSimilarity,
			wantFloor:      DefaultResolutionFloor,
		},
		{
			name: "outcomes outside the window are ignored",
			outcomes: []outcome.Record{
				record(31*24*time.Hour, true, now),
				record(40*24*time.Hour, true, now),
			},
			wantSimilarity: DefaultSimilarity,
			wantFloor:      DefaultResolutionFloor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adjust("zone1", tt.outcomes, now)

			assert.Equal(t, "zone1", got.ZoneID)
			assert.InDelta(t, tt.wantSimilarity, got.Similarity, 1e-9)
			assert.InDelta(t, tt.wantFloor, got.ResolutionFloor, 1e-9)
			assert.Equal(t, now, got.AdjustedAt)
		})
	}
}

func TestAdjust_AlwaysClamped(t *testing.T) {
	now := time.Now()

	variants := [][]outcome.Record{
		nil,
		{record(time.Hour, false, now)},
		{record(time.Hour, true, now)},
		{record(time.Hour, true, now), record(time.Hour, false, now)},
	}

	for _, outcomes := range variants {
		got := Adjust("z", outcomes, now)
		require.GreaterOrEqual(t, got.Similarity, Min)
		require.LessOrEqual(t, got.Similarity, Max)
		require.GreaterOrEqual(t, got.ResolutionFloor, Min)
		require.LessOrEqual(t, got.ResolutionFloor, Max)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.0, Min},
		{0.29, Min},
		{0.3, 0.3},
		{0.5, 0.5},
		{0.95, 0.95},
		{0.96, Max},
		{2.0, Max},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in))
	}
}

func TestAccuracy(t *testing.T) {
	now := time.Now()

	t.Run("empty history reports no window", func(t *testing.T) {
		_, ok := Accuracy(nil, now)
		assert.False(t, ok)
	})

	t.Run("counts only windowed outcomes", func(t *testing.T) {
		outcomes := []outcome.Record{
			record(time.Hour, false, now),
			record(2*time.Hour, true, now),
			record(45*24*time.Hour, true, now), // outside window
		}

		acc, ok := Accuracy(outcomes, now)
		require.True(t, ok)
		assert.InDelta(t, 0.5, acc, 1e-9)
	})
}
