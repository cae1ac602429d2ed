package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	store, err := NewFileStore(tempDir)
	require.NoError(t, err)

	key := "mealPlanState"

	t.Run("Get-Missing", func(t *testing.T) {
		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("Put", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`{"mealPlan":{}}`)))

		_, err := os.Stat(filepath.Join(tempDir, key+".json"))
		assert.NoError(t, err, "expected record file to be created")
	})

	t.Run("Get", func(t *testing.T) {
		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"mealPlan":{}}`, string(data))
	})

	t.Run("Put-Replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`{}`)))
		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(data))

		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temp files should be left behind")
	})

	t.Run("Key-Is-Sanitized", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "../escape", []byte(`x`)))
		_, err := os.Stat(filepath.Join(filepath.Dir(tempDir), "escape.json"))
		assert.True(t, os.IsNotExist(err), "record must stay inside the base directory")
	})
}
