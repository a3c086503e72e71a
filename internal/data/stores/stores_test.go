package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })

	return database
}

// seedZone inserts a zone so foreign keys on child tables are satisfied.
func seedZone(t *testing.T, database *db.DB, name string) zone.Zone {
	t.Helper()

	z := zone.Zone{
		Name:            name,
		DisplayName:     name,
		Enabled:         true,
		UpdateFrequency: 30 * time.Minute,
		CreatedAt:       time.Now(),
	}
	require.NoError(t, NewZoneStore(database).Create(context.Background(), &z), "seed zone")

	return z
}
