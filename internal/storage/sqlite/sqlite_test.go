package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/database"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/model"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, cfg Config) *Backend {
	t.Helper()
	b, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	return b
}

func TestEndMatch_DumpsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "matches.db")
	b := newBackend(t, Config{DumpPath: path})
	defer b.Close()

	m := &core.Match{StartedAt: time.Now(), Lobby: core.LobbyData{PlayerID: "p1"}}
	require.NoError(t, b.StartMatch(m))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 0, Action: core.Wait{}}))
	require.NoError(t, b.EndMatch(&core.GameEnd{Teams: []core.EndGameTeam{{Name: "red", Score: 1}}}))

	assert.Equal(t, path, b.ExportedFilePath())

	onDisk, err := database.GetSqliteDB(path)
	require.NoError(t, err)

	var count int64
	require.NoError(t, onDisk.Model(&model.Tick{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var row model.Match
	require.NoError(t, onDisk.First(&row).Error)
	assert.Equal(t, m.ID, row.ID.String())
	assert.Equal(t, "red", row.Winner)
}

func TestDumpLoop_WritesPeriodically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periodic.db")
	b := newBackend(t, Config{DumpPath: path, DumpInterval: 20 * time.Millisecond})
	defer b.Close()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClose_WithoutDumpPath(t *testing.T) {
	b := newBackend(t, Config{})
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
	assert.Empty(t, b.ExportedFilePath())
}
