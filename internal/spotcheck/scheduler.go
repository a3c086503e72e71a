package spotcheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/spotcheck/detect"
)

// Scheduler drives the daemon: one serial reconciliation loop per
// enabled zone at its update frequency, parallel across zones, plus a
// lower-frequency threshold-adaptation sweep. Single-writer per zone is
// enforced by the per-zone loop, not locking.
type Scheduler struct {
	zones      zone.Store
	source     detect.Source
	reconciler *Reconciler
	thresholds *ThresholdService
	log        zerolog.Logger

	// AdaptInterval is the threshold sweep period.
	AdaptInterval time.Duration
}

// NewScheduler creates a scheduler.
func NewScheduler(
	zones zone.Store,
	source detect.Source,
	reconciler *Reconciler,
	thresholds *ThresholdService,
	adaptInterval time.Duration,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		zones:         zones,
		source:        source,
		reconciler:    reconciler,
		thresholds:    thresholds,
		log:           logging.Component(log, "scheduler"),
		AdaptInterval: adaptInterval,
	}
}

// Run starts one loop per enabled zone and the adaptation sweep, then
// blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	zones, err := s.zones.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list zones: %w", err)
	}
	if len(zones) == 0 {
		s.log.Warn().Msg("no enabled zones, nothing to schedule")
	}

	var wg sync.WaitGroup
	for _, z := range zones {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runZone(ctx, z)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runAdaptSweep(ctx)
	}()

	s.log.Info().Int("zones", len(zones)).Msg("scheduler started")
	wg.Wait()
	s.log.Info().Msg("scheduler stopped")

	return nil
}

// runZone is the zone's serial loop: tick, collect, reconcile. A failed
// cycle never stops the loop; the next tick is the retry boundary.
func (s *Scheduler) runZone(ctx context.Context, z zone.Zone) {
	interval := z.UpdateFrequency
	if interval <= 0 {
		s.log.Warn().Str("zone", z.Name).Msg("zone has no update frequency, skipping")
		return
	}

	s.log.Debug().Str("zone", z.Name).Dur("interval", interval).Msg("zone loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, z)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, z zone.Zone) {
	batch, ok, err := s.source.Collect(ctx, z)
	if err != nil {
		s.log.Error().Err(err).Str("zone", z.Name).Msg("detection collection failed")
		return
	}
	if !ok {
		s.log.Debug().Str("zone", z.Name).Msg("no detections this cycle")
		return
	}

	// Reconciler.Run logs its own failures; nothing more to do here.
	_, _ = s.reconciler.Run(ctx, z, batch.Detections, batch.CleanlinessScore)
}

func (s *Scheduler) runAdaptSweep(ctx context.Context) {
	interval := s.AdaptInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.thresholds.AdjustAll(ctx); err != nil {
				s.log.Error().Err(err).Msg("threshold sweep failed")
			}
		}
	}
}
