package spotcheck

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/eventbus"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/spotcheck/detect"
)

func TestScheduler_Run(t *testing.T) {
	f := newFixture(t)

	// Store frequencies are whole seconds, so 1s is the fastest tick the
	// test can get.
	z := zone.Zone{Name: "kitchen", DisplayName: "Kitchen", Enabled: true, UpdateFrequency: time.Second}
	require.NoError(t, f.zones.Create(context.Background(), &z))

	inboxDir := t.TempDir()
	payload, err := json.Marshal(detect.Batch{
		Detections: []task.Detection{{Description: "wipe kitchen counter", Confidence: 0.8}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(inboxDir, "kitchen.json"), payload, 0o644))

	source := detect.NewFileInbox(inboxDir, zerolog.Nop())
	thresholds := NewThresholdService(f.thresholds, f.outcomes, f.zones, f.bus.EventBus, zerolog.Nop())
	sched := NewScheduler(f.zones, source, f.newReconciler(), thresholds, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sched.Run(ctx)
	}()

	require.True(t, f.bus.WaitFor(eventbus.EventAnalysisCompleted, 5*time.Second),
		"scheduler picked up the inbox drop")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}

	open, err := f.tasks.ListOpen(context.Background(), z.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "wipe kitchen counter", open[0].Description)
}
