package detect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/spotcheck/internal/core/zone"
)

func TestFileInbox_Collect(t *testing.T) {
	ctx := context.Background()
	z := zone.Zone{ID: "z1", Name: "kitchen"}

	t.Run("no drop file", func(t *testing.T) {
		inbox := NewFileInbox(t.TempDir(), zerolog.Nop())

		_, ok, err := inbox.Collect(ctx, z)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("consumes drop file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "kitchen.json")
		payload := `{
			"detections": [
				{"description": "wash the dishes", "confidence": 0.85},
				{"description": "wipe the counter", "confidence": 0.7}
			],
			"cleanliness_score": 0.6
		}`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		inbox := NewFileInbox(dir, zerolog.Nop())

		batch, ok, err := inbox.Collect(ctx, z)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, batch.Detections, 2)
		assert.Equal(t, "wash the dishes", batch.Detections[0].Description)
		assert.InDelta(t, 0.6, batch.CleanlinessScore, 1e-9)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "drop file consumed")

		_, ok, err = inbox.Collect(ctx, z)
		require.NoError(t, err)
		assert.False(t, ok, "second collect finds nothing")
	})

	t.Run("cleanliness score absent", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "kitchen.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"detections": []}`), 0o644))

		inbox := NewFileInbox(dir, zerolog.Nop())

		batch, ok, err := inbox.Collect(ctx, z)
		require.NoError(t, err)
		require.True(t, ok)
		assert.InDelta(t, -1, batch.CleanlinessScore, 1e-9)
	})

	t.Run("malformed drop is consumed and reported", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "kitchen.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

		inbox := NewFileInbox(dir, zerolog.Nop())

		_, ok, err := inbox.Collect(ctx, z)
		require.Error(t, err)
		assert.False(t, ok)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "malformed drop removed")
	})
}
