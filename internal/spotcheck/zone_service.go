package spotcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/validate"
	"github.com/colonyops/spotcheck/internal/core/zone"
)

// ZoneService handles zone lifecycle and reporting operations.
type ZoneService struct {
	zones    zone.Store
	tasks    task.Store
	analyses analysis.Store
	log      zerolog.Logger
}

// NewZoneService creates a zone service.
func NewZoneService(zones zone.Store, tasks task.Store, analyses analysis.Store, log zerolog.Logger) *ZoneService {
	return &ZoneService{
		zones:    zones,
		tasks:    tasks,
		analyses: analyses,
		log:      logging.Component(log, "zones"),
	}
}

// AddOptions configures zone creation.
type AddOptions struct {
	DisplayName         string
	CameraEntity        string
	UpdateFrequency     time.Duration
	MaxTasksPerAnalysis int
}

// Add creates a new zone. The zone name is the slugified display name.
func (s *ZoneService) Add(ctx context.Context, opts AddOptions) (zone.Zone, error) {
	name := zone.Slugify(opts.DisplayName)
	if err := validate.ZoneName(name); err != nil {
		return zone.Zone{}, err
	}
	if opts.UpdateFrequency <= 0 {
		return zone.Zone{}, fmt.Errorf("update frequency must be positive, got %s", opts.UpdateFrequency)
	}

	z := zone.Zone{
		Name:                name,
		DisplayName:         opts.DisplayName,
		CameraEntity:        opts.CameraEntity,
		Enabled:             true,
		UpdateFrequency:     opts.UpdateFrequency,
		MaxTasksPerAnalysis: opts.MaxTasksPerAnalysis,
	}
	if err := s.zones.Create(ctx, &z); err != nil {
		return zone.Zone{}, fmt.Errorf("create zone %s: %w", name, err)
	}

	s.log.Info().Str("zone_id", z.ID).Str("zone", z.Name).Msg("zone created")
	return z, nil
}

// Resolve looks a zone up by name first, then by ID, so commands accept
// either.
func (s *ZoneService) Resolve(ctx context.Context, ref string) (zone.Zone, error) {
	z, err := s.zones.GetByName(ctx, ref)
	if err == nil {
		return z, nil
	}
	if !errors.Is(err, zone.ErrNotFound) {
		return zone.Zone{}, err
	}
	return s.zones.Get(ctx, ref)
}

// List returns all zones.
func (s *ZoneService) List(ctx context.Context) ([]zone.Zone, error) {
	return s.zones.List(ctx)
}

// ListEnabled returns enabled zones.
func (s *ZoneService) ListEnabled(ctx context.Context) ([]zone.Zone, error) {
	return s.zones.ListEnabled(ctx)
}

// SetEnabled flips a zone's enabled flag.
func (s *ZoneService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.zones.SetEnabled(ctx, id, enabled); err != nil {
		return fmt.Errorf("set zone %s enabled=%t: %w", id, enabled, err)
	}
	s.log.Info().Str("zone_id", id).Bool("enabled", enabled).Msg("zone toggled")
	return nil
}

// Remove deletes a zone and everything it owns.
func (s *ZoneService) Remove(ctx context.Context, id string) error {
	if err := s.zones.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete zone %s: %w", id, err)
	}
	s.log.Info().Str("zone_id", id).Msg("zone removed")
	return nil
}

// Summary aggregates a zone's task and analysis state.
type Summary struct {
	Zone           zone.Zone             `json:"zone"`
	StatusCounts   map[task.Status]int64 `json:"status_counts"`
	PriorityCounts map[int]int64         `json:"priority_counts"`
	CompletionRate float64               `json:"completion_rate"`

	// OldestPendingAge is zero when the zone has no pending tasks.
	OldestPendingAge time.Duration `json:"oldest_pending_age"`

	// LastAnalysisAt is nil when the zone has never been analyzed.
	LastAnalysisAt *time.Time `json:"last_analysis_at,omitempty"`
}

// Summary computes the zone's summary.
func (s *ZoneService) Summary(ctx context.Context, z zone.Zone) (Summary, error) {
	counts, err := s.tasks.CountByStatus(ctx, z.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("count tasks: %w", err)
	}

	sum := Summary{
		Zone:           z,
		StatusCounts:   counts,
		PriorityCounts: make(map[int]int64),
	}

	var total, done int64
	for status, n := range counts {
		total += n
		if status == task.StatusCompleted || status == task.StatusAutoCompleted {
			done += n
		}
	}
	if total > 0 {
		sum.CompletionRate = float64(done) / float64(total)
	}

	open, err := s.tasks.ListOpen(ctx, z.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("list open tasks: %w", err)
	}
	now := time.Now()
	for i := range open {
		sum.PriorityCounts[open[i].Priority]++
	}
	if len(open) > 0 {
		sum.OldestPendingAge = open[0].Age(now)
	}

	latest, err := s.analyses.Latest(ctx, z.ID)
	switch {
	case err == nil:
		at := latest.CreatedAt
		sum.LastAnalysisAt = &at
	case !errors.Is(err, analysis.ErrNotFound):
		return Summary{}, fmt.Errorf("latest analysis: %w", err)
	}

	return sum, nil
}

// History returns the zone's analysis records, newest first.
func (s *ZoneService) History(ctx context.Context, zoneID string, limit int) ([]analysis.Record, error) {
	return s.analyses.List(ctx, zoneID, limit)
}
