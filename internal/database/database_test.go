package database

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zerolog.New(io.Discard))
	require.NoError(t, m.ConnectSqlite(""))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestConnectSqlite_Migrates(t *testing.T) {
	m := newTestManager(t)

	assert.True(t, m.IsValid)
	assert.True(t, m.UsingSqlite)
	for _, tbl := range []any{&model.Match{}, &model.Tick{}, &model.Warning{}, &model.TeamResult{}} {
		assert.True(t, m.DB.Migrator().HasTable(tbl), "%T", tbl)
	}
}

func TestGetSqliteDB_InMemoryDatabasesAreIsolated(t *testing.T) {
	a := newTestManager(t)
	b := newTestManager(t)

	require.NoError(t, a.DB.Create(&model.Match{ID: uuid.New(), Name: "only in a"}).Error)

	var count int64
	require.NoError(t, b.DB.Model(&model.Match{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDumpToDisk(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.DB.Create(&model.Match{ID: uuid.New(), Name: "dumped"}).Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, m.DumpToDisk(path))
	// second dump replaces the first
	require.NoError(t, m.DumpToDisk(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	onDisk, err := GetSqliteDB(path)
	require.NoError(t, err)
	var got model.Match
	require.NoError(t, onDisk.First(&got).Error)
	assert.Equal(t, "dumped", got.Name)
}

func TestDumpMemoryDBToDisk_EmptyPath(t *testing.T) {
	m := newTestManager(t)
	assert.Error(t, DumpMemoryDBToDisk(m.DB, ""))
}

func TestDumpToDisk_RequiresSqlite(t *testing.T) {
	m := NewManager(zerolog.New(io.Discard))
	assert.Error(t, m.DumpToDisk("x.db"))
}

func TestPostgresDSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db.local")
	viper.Set("db.port", "5433")
	viper.Set("db.username", "bot")
	viper.Set("db.password", "secret")
	viper.Set("db.database", "tanks")

	assert.Equal(t, "host=db.local port=5433 user=bot password=secret dbname=tanks sslmode=disable", PostgresDSN())
}

func TestClose_NoConnection(t *testing.T) {
	m := NewManager(zerolog.New(io.Discard))
	assert.NoError(t, m.Close())
}
