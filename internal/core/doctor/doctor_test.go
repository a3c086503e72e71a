package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/core/zone"
)

func TestDataDirCheck(t *testing.T) {
	t.Run("missing dir warns", func(t *testing.T) {
		check := NewDataDirCheck(filepath.Join(t.TempDir(), "nope"))
		result := check.Run(context.Background())

		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusWarn, result.Items[0].Status)
	})

	t.Run("writable dir passes", func(t *testing.T) {
		check := NewDataDirCheck(t.TempDir())
		result := check.Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, StatusPass, result.Items[1].Status)
	})

	t.Run("file instead of dir fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		check := NewDataDirCheck(path)
		result := check.Run(context.Background())

		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})
}

func TestDatabaseCheck(t *testing.T) {
	t.Run("open failure", func(t *testing.T) {
		check := NewDatabaseCheck(func(context.Context) ([]int, error) {
			return nil, errors.New("boom")
		})
		result := check.Run(context.Background())

		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})

	t.Run("pending migrations warn", func(t *testing.T) {
		check := NewDatabaseCheck(func(context.Context) ([]int, error) {
			return []int{2}, nil
		})
		result := check.Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
	})

	t.Run("current passes", func(t *testing.T) {
		check := NewDatabaseCheck(func(context.Context) ([]int, error) {
			return nil, nil
		})
		result := check.Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[1].Status)
	})
}

// stub stores for the zones check

type stubZones struct {
	zone.Store
	zones []zone.Zone
}

func (s *stubZones) List(context.Context) ([]zone.Zone, error) { return s.zones, nil }

type stubAnalyses struct {
	analysis.Store
	latest map[string]analysis.Record
}

func (s *stubAnalyses) Latest(_ context.Context, zoneID string) (analysis.Record, error) {
	rec, ok := s.latest[zoneID]
	if !ok {
		return analysis.Record{}, analysis.ErrNotFound
	}
	return rec, nil
}

func TestZonesCheck(t *testing.T) {
	now := time.Now()

	zones := &stubZones{zones: []zone.Zone{
		{ID: "fresh", Name: "kitchen", Enabled: true, UpdateFrequency: time.Hour},
		{ID: "stale", Name: "bedroom", Enabled: true, UpdateFrequency: time.Hour},
		{ID: "never", Name: "garage", Enabled: true, UpdateFrequency: time.Hour},
		{ID: "off", Name: "attic", Enabled: false, UpdateFrequency: time.Hour},
		{ID: "bad", Name: "porch", Enabled: true, UpdateFrequency: 0},
	}}
	analyses := &stubAnalyses{latest: map[string]analysis.Record{
		"fresh": {CreatedAt: now.Add(-30 * time.Minute)},
		"stale": {CreatedAt: now.Add(-5 * time.Hour)},
	}}

	check := NewZonesCheck(zones, analyses)
	check.now = func() time.Time { return now }

	result := check.Run(context.Background())
	require.Len(t, result.Items, 5)

	byLabel := map[string]CheckItem{}
	for _, item := range result.Items {
		byLabel[item.Label] = item
	}

	assert.Equal(t, StatusPass, byLabel["kitchen"].Status)
	assert.Equal(t, StatusWarn, byLabel["bedroom"].Status, "beyond 3x interval")
	assert.Equal(t, StatusWarn, byLabel["garage"].Status, "never analyzed")
	assert.Equal(t, StatusPass, byLabel["attic"].Status, "disabled zones are fine")
	assert.Equal(t, StatusFail, byLabel["porch"].Status, "zero frequency")
}

func TestSummary(t *testing.T) {
	results := []Result{
		{Items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn}}},
		{Items: []CheckItem{{Status: StatusFail}, {Status: StatusPass}}},
	}

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
}
