// Package gorm provides GORM-based database operations for catwalk.
package gorm

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(Config{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.PingContext(context.Background()))

	// Verify WAL mode is enabled
	var journalMode string
	require.NoError(t, store.DB.Raw("PRAGMA journal_mode").Scan(&journalMode).Error)
	assert.Equal(t, "wal", journalMode)

	// Verify foreign keys are enforced on this connection
	var foreignKeys int
	require.NoError(t, store.DB.Raw("PRAGMA foreign_keys").Scan(&foreignKeys).Error)
	assert.Equal(t, 1, foreignKeys)

	for _, table := range []string{"cats", "walks"} {
		assert.True(t, store.DB.Migrator().HasTable(table), "table %q does not exist", table)
	}

	var indexCount int
	err := store.DB.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_walks_open_cat'").Scan(&indexCount).Error
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore(Config{Path: "  "})
	assert.Error(t, err)
}

func TestNewStore_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cats.db")

	store, err := NewStore(Config{Path: path, LogLevel: logger.Silent})
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
}

func TestMigrationIdempotency(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := Config{Path: dbPath, LogLevel: logger.Silent}
	ctx := context.Background()

	store1, err := NewStore(cfg)
	require.NoError(t, err)
	_, err = store1.InsertCat(ctx, "Mimi")
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Run migrations second time (should be idempotent and keep data)
	store2, err := NewStore(cfg)
	require.NoError(t, err)
	defer store2.Close()

	require.NoError(t, store2.CreateSchema(ctx))

	cats, err := store2.ListCats(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Mimi", cats[0].Name)
}
