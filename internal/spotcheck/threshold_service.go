package spotcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/eventbus"
	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/outcome"
	"github.com/colonyops/spotcheck/internal/core/threshold"
	"github.com/colonyops/spotcheck/internal/core/zone"
)

// ThresholdService runs the adaptor: it reads each zone's trailing
// outcome window and persists re-derived thresholds.
type ThresholdService struct {
	thresholds threshold.Store
	outcomes   outcome.Store
	zones      zone.Store
	bus        *eventbus.EventBus
	log        zerolog.Logger

	now func() time.Time
}

// NewThresholdService creates a threshold service.
func NewThresholdService(
	thresholds threshold.Store,
	outcomes outcome.Store,
	zones zone.Store,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *ThresholdService {
	return &ThresholdService{
		thresholds: thresholds,
		outcomes:   outcomes,
		zones:      zones,
		bus:        bus,
		log:        logging.Component(log, "thresholds"),
		now:        time.Now,
	}
}

// Show returns the zone's effective thresholds, defaults when none are
// persisted.
func (s *ThresholdService) Show(ctx context.Context, zoneID string) (threshold.Thresholds, error) {
	ths, err := s.thresholds.Get(ctx, zoneID)
	if errors.Is(err, threshold.ErrNotFound) {
		return threshold.Defaults(zoneID), nil
	}
	if err != nil {
		return threshold.Thresholds{}, fmt.Errorf("get thresholds: %w", err)
	}
	return ths, nil
}

// AdjustZone re-derives and persists one zone's thresholds from its
// trailing outcome window.
func (s *ThresholdService) AdjustZone(ctx context.Context, zoneID string) (threshold.Thresholds, error) {
	now := s.now()

	outcomes, err := s.outcomes.ListSince(ctx, zoneID, now.Add(-threshold.Window))
	if err != nil {
		return threshold.Thresholds{}, fmt.Errorf("list outcomes: %w", err)
	}

	ths := threshold.Adjust(zoneID, outcomes, now)
	if err := s.thresholds.Put(ctx, ths); err != nil {
		return threshold.Thresholds{}, fmt.Errorf("put thresholds: %w", err)
	}

	s.log.Info().
		Str("zone_id", zoneID).
		Float64("similarity", ths.Similarity).
		Float64("resolution_floor", ths.ResolutionFloor).
		Int("outcomes", len(outcomes)).
		Msg("thresholds adjusted")

	if s.bus != nil {
		s.bus.PublishThresholdsAdjusted(eventbus.ThresholdsAdjustedPayload{Thresholds: ths})
	}

	return ths, nil
}

// AdjustAll runs the adaptor for every enabled zone. A zone's failure
// is logged and does not stop the sweep.
func (s *ThresholdService) AdjustAll(ctx context.Context) error {
	zones, err := s.zones.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list zones: %w", err)
	}

	for _, z := range zones {
		if _, err := s.AdjustZone(ctx, z.ID); err != nil {
			s.log.Error().Err(err).Str("zone_id", z.ID).Msg("threshold adjustment failed")
		}
	}

	return nil
}
