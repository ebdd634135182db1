// internal/storage/storage_test.go
package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/config"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage"
	gormstorage "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/gorm"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/memory"
	parquetstorage "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/parquet"
	sqlitestorage "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ storage.Backend  = (*memory.Backend)(nil)
	_ storage.Backend  = (*gormstorage.Backend)(nil)
	_ storage.Backend  = (*sqlitestorage.Backend)(nil)
	_ storage.Backend  = (*parquetstorage.Backend)(nil)
	_ storage.Exporter = (*memory.Backend)(nil)
	_ storage.Exporter = (*sqlitestorage.Backend)(nil)
	_ storage.Exporter = (*parquetstorage.Backend)(nil)
)

func TestNewBackend_Disabled(t *testing.T) {
	for _, typ := range []string{"", "none"} {
		b, err := storage.NewBackend(config.StorageConfig{Type: typ}, nil, zerolog.Nop())
		require.NoError(t, err)
		assert.Nil(t, b)
	}
}

func TestNewBackend_Types(t *testing.T) {
	dir := t.TempDir()
	cfg := config.StorageConfig{
		Memory:  config.MemoryConfig{OutputDir: dir},
		SQLite:  config.SQLiteConfig{Path: filepath.Join(dir, "matches.db")},
		Parquet: config.ParquetConfig{OutputDir: dir},
	}

	cfg.Type = "memory"
	b, err := storage.NewBackend(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	cfg.Type = "parquet"
	b, err = storage.NewBackend(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &parquetstorage.Backend{}, b)

	cfg.Type = "sqlite"
	b, err = storage.NewBackend(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &sqlitestorage.Backend{}, b)
	exp, ok := b.(storage.Exporter)
	require.True(t, ok)
	assert.Equal(t, cfg.SQLite.Path, exp.ExportedFilePath())
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "mongo"}, nil, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown storage type: mongo")
}
