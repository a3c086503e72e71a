package spotcheck

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/core/config"
	"github.com/colonyops/spotcheck/internal/core/eventbus"
	"github.com/colonyops/spotcheck/internal/core/ignore"
	"github.com/colonyops/spotcheck/internal/core/notify"
	"github.com/colonyops/spotcheck/internal/core/outcome"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/threshold"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/data/db"
)

// App is the central entry point for all spotcheck operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Reconciler *Reconciler
	Tasks      *TaskService
	Zones      *ZoneService
	Thresholds *ThresholdService

	Stores Stores
	Config *config.Config
	Bus    *eventbus.EventBus
	DB     *db.DB
}

// Stores bundles the persistence interfaces commands reach for directly.
type Stores struct {
	Tasks         task.Store
	Zones         zone.Store
	Thresholds    threshold.Store
	IgnoreRules   ignore.Store
	Outcomes      outcome.Store
	Analyses      analysis.Store
	Notifications notify.Store
}

// NewApp constructs an App from explicit dependencies.
func NewApp(st Stores, cfg *config.Config, bus *eventbus.EventBus, database *db.DB, log zerolog.Logger) *App {
	return &App{
		Reconciler: NewReconciler(st.Tasks, st.Thresholds, st.IgnoreRules, st.Outcomes, st.Analyses, bus, log),
		Tasks:      NewTaskService(st.Tasks, st.Outcomes, bus, log),
		Zones:      NewZoneService(st.Zones, st.Tasks, st.Analyses, log),
		Thresholds: NewThresholdService(st.Thresholds, st.Outcomes, st.Zones, bus, log),
		Stores:     st,
		Config:     cfg,
		Bus:        bus,
		DB:         database,
	}
}
