package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/spotcheck/internal/core/task"
)

func TestFormatStatusCounts(t *testing.T) {
	tests := []struct {
		name   string
		counts map[task.Status]int64
		want   string
	}{
		{
			name:   "empty",
			counts: map[task.Status]int64{},
			want:   "none",
		},
		{
			name:   "zero counts dropped",
			counts: map[task.Status]int64{task.StatusPending: 0},
			want:   "none",
		},
		{
			name: "stable order regardless of map iteration",
			counts: map[task.Status]int64{
				task.StatusCancelled: 1,
				task.StatusPending:   3,
				task.StatusCompleted: 2,
			},
			want: "3 pending, 2 completed, 1 cancelled",
		},
		{
			name:   "auto completed uses status string",
			counts: map[task.Status]int64{task.StatusAutoCompleted: 4},
			want:   "4 auto_completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatStatusCounts(tt.counts))
		})
	}
}

func TestFormatPriorityCounts(t *testing.T) {
	assert.Equal(t, "none", formatPriorityCounts(map[int]int64{}))
	assert.Equal(t, "2 high, 1 low", formatPriorityCounts(map[int]int64{
		task.PriorityLow:  1,
		task.PriorityHigh: 2,
	}))
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "high", priorityLabel(task.PriorityHigh))
	assert.Equal(t, "med", priorityLabel(task.PriorityMedium))
	assert.Equal(t, "low", priorityLabel(task.PriorityLow))
	assert.Equal(t, "9", priorityLabel(9))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "wipe dow…", truncate("wipe down the counter", 9))
}
