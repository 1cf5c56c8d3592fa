package tasklog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/FausT-VX/tasklog-server/models"
	"github.com/FausT-VX/tasklog-server/settings"
	"github.com/FausT-VX/tasklog-server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testSettings(t *testing.T, kind string) settings.Settings {
	cfg := settings.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.StorageType = kind
	return cfg
}

func TestOpenStoreExcel(t *testing.T) {
	cfg := testSettings(t, "excel")
	store, closer, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closer.Close()

	assert.IsType(t, &storage.ExcelStore{}, store)
	_, err = os.Stat(cfg.ExcelPath())
	assert.NoError(t, err)
}

func TestOpenStoreSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testSettings(t, "sqlite")
	store, closer, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	defer closer.Close()

	require.NoError(t, store.Append(ctx, models.Record{Description: "x", TaskType: "Р", Difficulty: "1"}))
	got, err := store.ReadLast(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Description)
}

func TestOpenStoreDatabaseUnsupported(t *testing.T) {
	ctx := context.Background()
	store, closer, err := OpenStore(ctx, testSettings(t, "database"))
	require.NoError(t, err)
	defer closer.Close()

	assert.ErrorIs(t, store.Initialize(ctx), storage.ErrUnsupportedStorageKind)
	assert.ErrorIs(t, store.Append(ctx, models.Record{Description: "x"}), storage.ErrUnsupportedStorageKind)
	_, err = store.ReadLast(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrUnsupportedStorageKind)
}

func TestOpenStoreInvalid(t *testing.T) {
	_, _, err := OpenStore(context.Background(), testSettings(t, "mongodb"))
	assert.ErrorIs(t, err, storage.ErrInvalidConfiguration)

	// таблица без идентификатора - ошибка конфигурации
	_, _, err = OpenStore(context.Background(), testSettings(t, "sheets"))
	assert.ErrorIs(t, err, storage.ErrInvalidConfiguration)
}
