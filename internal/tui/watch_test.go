package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/pkg/tuitest"
)

func testSnapshot() snapshot {
	lastRun := time.Now().Add(-10 * time.Minute)
	return snapshot{
		Zones: []zoneRow{
			{
				Zone:       zone.Zone{ID: "z1", Name: "kitchen", Enabled: true},
				OpenTasks:  2,
				TotalTasks: 5,
				LastRun:    &lastRun,
			},
			{
				Zone:      zone.Zone{ID: "z2", Name: "living-room", Enabled: false},
				OpenTasks: 0,
			},
		},
		Tasks: []task.Task{
			{
				ID:              "t1",
				ZoneID:          "z1",
				Description:     "wipe down the counter",
				Status:          task.StatusPending,
				Priority:        task.PriorityMedium,
				ConfidenceScore: 0.84,
				DetectionCount:  3,
				CreatedAt:       time.Now().Add(-2 * time.Hour),
			},
		},
	}
}

func loadedModel(t *testing.T) Model {
	t.Helper()

	m := NewModel(nil, time.Second)

	updated, _ := m.Update(tuitest.WindowSize(120, 40))
	updated, _ = updated.Update(refreshMsg{snap: testSnapshot()})

	model, ok := updated.(Model)
	require.True(t, ok)
	return model
}

func TestModel_View(t *testing.T) {
	m := loadedModel(t)

	view := tuitest.StripANSI(m.View())

	assert.Contains(t, view, "spotcheck watch")
	assert.Contains(t, view, "kitchen")
	assert.Contains(t, view, "living-room")
	assert.Contains(t, view, "(off)")
	assert.Contains(t, view, "wipe down the counter")
	assert.Contains(t, view, "q: quit")
}

func TestModel_View_Loading(t *testing.T) {
	m := NewModel(nil, time.Second)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "loading zones")
}

func TestModel_View_NoZones(t *testing.T) {
	m := NewModel(nil, time.Second)

	updated, _ := m.Update(refreshMsg{snap: snapshot{}})
	view := tuitest.StripANSI(updated.View())

	assert.Contains(t, view, "no zones configured")
}

func TestModel_ZoneSelection(t *testing.T) {
	m := loadedModel(t)
	require.Equal(t, 0, m.selected)

	updated, cmd := m.Update(tuitest.KeyPress('j'))
	model := updated.(Model)

	assert.Equal(t, 1, model.selected)
	assert.NotNil(t, cmd, "selection change should trigger a refresh")

	// Bottom of the list: no further movement
	updated, _ = model.Update(tuitest.KeyPress('j'))
	assert.Equal(t, 1, updated.(Model).selected)

	updated, _ = updated.Update(tuitest.KeyPress('k'))
	assert.Equal(t, 0, updated.(Model).selected)
}

func TestModel_Quit(t *testing.T) {
	m := loadedModel(t)

	_, cmd := m.Update(tuitest.KeyPress('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_RefreshError(t *testing.T) {
	m := loadedModel(t)

	updated, _ := m.Update(refreshMsg{err: assert.AnError})
	view := tuitest.StripANSI(updated.View())

	assert.Contains(t, view, "error:")
	// Previous zone data is retained for the next successful poll.
	assert.Len(t, updated.(Model).zones, 2)
}
