// Package threshold defines the per-zone decision thresholds and the
// adaptor that tunes them from historical auto-completion outcomes.
// Thresholds is a value object: every adjustment returns a new value,
// nothing here mutates shared state.
package threshold

import (
	"context"
	"errors"
	"time"

	"github.com/colonyops/spotcheck/internal/core/outcome"
)

// Bounds and base defaults for both thresholds.
const (
	Min = 0.3
	Max = 0.95

	DefaultSimilarity      = 0.75
	DefaultResolutionFloor = 0.7

	// adjustStep is how far a threshold moves from its base default per
	// adaptation, in either direction.
	adjustStep = 0.1

	// Window is the trailing outcome window the adaptor considers.
	Window = 30 * 24 * time.Hour
)

// ErrNotFound is returned when a zone has no persisted thresholds.
var ErrNotFound = errors.New("thresholds not found")

// Thresholds is the per-zone decision threshold pair.
type Thresholds struct {
	ZoneID string `json:"zone_id"`

	// Similarity is the minimum combined text-similarity score for a
	// detection and an open task to be treated as the same item.
	Similarity float64 `json:"similarity_threshold"`

	// ResolutionFloor is the minimum rule confidence before an
	// auto-completion is actually applied.
	ResolutionFloor float64 `json:"resolution_confidence_floor"`

	AdjustedAt time.Time `json:"adjusted_at"`
}

// Defaults returns the base thresholds for a zone.
func Defaults(zoneID string) Thresholds {
	return Thresholds{
		ZoneID:          zoneID,
		Similarity:      DefaultSimilarity,
		ResolutionFloor: DefaultResolutionFloor,
	}
}

// Clamp bounds a threshold value to [Min, Max].
func Clamp(v float64) float64 {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Accuracy computes the auto-completion accuracy over outcomes that
// fall within the trailing window ending at now: the fraction of
// auto-completions the user did not revert. The second return reports
// whether any outcome landed in the window at all.
func Accuracy(outcomes []outcome.Record, now time.Time) (float64, bool) {
	cutoff := now.Add(-Window)

	total := 0
	kept := 0
	for _, o := range outcomes {
		if o.CreatedAt.Before(cutoff) {
			continue
		}
		total++
		if !o.Reverted {
			kept++
		}
	}

	if total == 0 {
		return 0, false
	}
	return float64(kept) / float64(total), true
}

// Adjust returns new thresholds for a zone derived from its outcome
// history. High accuracy (> 0.9) lowers both thresholds one step below
// the base defaults, permitting more aggressive auto-resolution; low
// accuracy (< 0.7) raises both one step above; anything else, or an
// empty window, reverts to the base defaults. Results are always
// clamped to [Min, Max].
func Adjust(zoneID string, outcomes []outcome.Record, now time.Time) Thresholds {
	base := Defaults(zoneID)
	base.AdjustedAt = now

	acc, ok := Accuracy(outcomes, now)
	if !ok {
		return base
	}

	switch {
	case acc > 0.9:
		base.Similarity = Clamp(DefaultSimilarity - adjustStep)
		base.ResolutionFloor = Clamp(DefaultResolutionFloor - adjustStep)
	case acc < 0.7:
		base.Similarity = Clamp(DefaultSimilarity + adjustStep)
		base.ResolutionFloor = Clamp(DefaultResolutionFloor + adjustStep)
	}

	return base
}

// Store defines the interface for threshold persistence.
type Store interface {
	// Get returns the zone's thresholds. Returns ErrNotFound when the
	// zone has none persisted; callers fall back to Defaults.
	Get(ctx context.Context, zoneID string) (Thresholds, error)

	// Put upserts the zone's thresholds.
	Put(ctx context.Context, t Thresholds) error

	// Delete removes the zone's thresholds, reverting it to defaults.
	Delete(ctx context.Context, zoneID string) error
}
