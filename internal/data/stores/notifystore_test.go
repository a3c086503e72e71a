package stores

import (
	"context"
	"testing"

	"github.com/colonyops/spotcheck/internal/core/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and list", func(t *testing.T) {
		database := newTestDB(t)
		store := NewNotifyStore(database)

		id1, err := store.Save(ctx, notify.Notification{
			ZoneID: "zone-1", Level: notify.LevelInfo, Message: "new task in Kitchen",
		})
		require.NoError(t, err, "Save")
		assert.Positive(t, id1)

		id2, err := store.Save(ctx, notify.Notification{
			ZoneID: "zone-1", Level: notify.LevelWarning, Message: "task reopened in Kitchen",
		})
		require.NoError(t, err)
		assert.Greater(t, id2, id1, "IDs are monotonic")

		list, err := store.List(ctx)
		require.NoError(t, err, "List")
		require.Len(t, list, 2)
		assert.Equal(t, id2, list[0].ID, "newest first")
		assert.Equal(t, notify.LevelWarning, list[0].Level)
		assert.Equal(t, "zone-1", list[0].ZoneID)
	})

	t.Run("count and clear", func(t *testing.T) {
		database := newTestDB(t)
		store := NewNotifyStore(database)

		_, err := store.Save(ctx, notify.Notification{Level: notify.LevelInfo, Message: "one"})
		require.NoError(t, err)
		_, err = store.Save(ctx, notify.Notification{Level: notify.LevelError, Message: "two"})
		require.NoError(t, err)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		require.NoError(t, store.Clear(ctx), "Clear")

		count, err = store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
