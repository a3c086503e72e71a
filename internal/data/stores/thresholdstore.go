package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/threshold"
	"github.com/colonyops/spotcheck/internal/data/db"
)

// ThresholdStore implements threshold.Store using SQLite.
type ThresholdStore struct {
	db *db.DB
}

var _ threshold.Store = (*ThresholdStore)(nil)

// NewThresholdStore creates a new SQLite-backed threshold store.
func NewThresholdStore(db *db.DB) *ThresholdStore {
	return &ThresholdStore{db: db}
}

// Get returns the zone's persisted thresholds.
func (s *ThresholdStore) Get(ctx context.Context, zoneID string) (threshold.Thresholds, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT zone_id, similarity, resolution_floor, adjusted_at
		 FROM zone_thresholds WHERE zone_id = ?`, zoneID)

	var t threshold.Thresholds
	var adjustedAt int64
	err := row.Scan(&t.ZoneID, &t.Similarity, &t.ResolutionFloor, &adjustedAt)
	if IsNotFoundError(err) {
		return threshold.Thresholds{}, threshold.ErrNotFound
	}
	if err != nil {
		return threshold.Thresholds{}, fmt.Errorf("get thresholds: %w", err)
	}

	t.AdjustedAt = time.Unix(0, adjustedAt)
	return t, nil
}

// Put upserts the zone's thresholds.
func (s *ThresholdStore) Put(ctx context.Context, t threshold.Thresholds) error {
	if t.AdjustedAt.IsZero() {
		t.AdjustedAt = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO zone_thresholds (zone_id, similarity, resolution_floor, adjusted_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (zone_id) DO UPDATE SET
			similarity = excluded.similarity,
			resolution_floor = excluded.resolution_floor,
			adjusted_at = excluded.adjusted_at`,
		t.ZoneID, t.Similarity, t.ResolutionFloor, t.AdjustedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("put thresholds: %w", err)
	}

	return nil
}

// Delete removes the zone's thresholds.
func (s *ThresholdStore) Delete(ctx context.Context, zoneID string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM zone_thresholds WHERE zone_id = ?`, zoneID)
	if err != nil {
		return fmt.Errorf("delete thresholds: %w", err)
	}
	return nil
}
