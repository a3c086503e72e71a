package spotcheck

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/eventbus/testbus"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/internal/data/stores"
)

// fixture bundles real SQLite-backed stores for service tests.
type fixture struct {
	db         *db.DB
	bus        *testbus.Bus
	tasks      *stores.TaskStore
	zones      *stores.ZoneStore
	thresholds *stores.ThresholdStore
	rules      *stores.IgnoreStore
	outcomes   *stores.OutcomeStore
	analyses   *stores.AnalysisStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })

	return &fixture{
		db:         database,
		bus:        testbus.New(t),
		tasks:      stores.NewTaskStore(database),
		zones:      stores.NewZoneStore(database),
		thresholds: stores.NewThresholdStore(database),
		rules:      stores.NewIgnoreStore(database),
		outcomes:   stores.NewOutcomeStore(database),
		analyses:   stores.NewAnalysisStore(database),
	}
}

func (f *fixture) newReconciler() *Reconciler {
	return NewReconciler(f.tasks, f.thresholds, f.rules, f.outcomes, f.analyses, f.bus.EventBus, zerolog.Nop())
}

func (f *fixture) seedZone(t *testing.T, name string) zone.Zone {
	t.Helper()

	z := zone.Zone{
		Name:            name,
		DisplayName:     name,
		Enabled:         true,
		UpdateFrequency: 30 * time.Minute,
	}
	require.NoError(t, f.zones.Create(context.Background(), &z), "seed zone")

	return z
}
