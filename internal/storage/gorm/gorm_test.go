package gormstorage

import (
	"testing"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/database"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/model"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBackend creates a Backend on a private in-memory SQLite database.
// The long write interval keeps the background writer out of the way.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)

	b := New(Dependencies{DB: db, WriteInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func testMatch() *core.Match {
	return &core.Match{
		StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Lobby: core.LobbyData{
			PlayerID:          "p1",
			TeamName:          "red",
			BroadcastInterval: 100 * time.Millisecond,
			Teams: []core.LobbyTeam{
				{Name: "red", Players: []core.LobbyPlayer{{ID: "p1", TankType: core.Heavy}}},
			},
		},
	}
}

func TestInitClose(t *testing.T) {
	b := newTestBackend(t)
	require.NotNil(t, b.queues)
	require.NotNil(t, b.stopChan)

	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close(), "second close is a no-op")
}

func TestClose_BeforeInit(t *testing.T) {
	b := New(Dependencies{})
	assert.NoError(t, b.Close())
}

func TestStartMatch_AssignsID(t *testing.T) {
	b := newTestBackend(t)
	m := testMatch()

	require.NoError(t, b.StartMatch(m))
	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)

	var row model.Match
	require.NoError(t, b.DB().First(&row, "id = ?", m.ID).Error)
	assert.Equal(t, "match", row.Name)
	assert.Equal(t, "heavy", row.TankType)
	assert.Equal(t, int64(100), row.BroadcastIntervalMs)
}

func TestStartMatch_KeepsGivenID(t *testing.T) {
	b := newTestBackend(t)
	m := testMatch()
	m.ID = uuid.NewString()
	want := m.ID

	require.NoError(t, b.StartMatch(m))
	assert.Equal(t, want, m.ID)
}

func TestRecord_WithoutMatch(t *testing.T) {
	b := newTestBackend(t)
	assert.ErrorIs(t, b.RecordTick(&core.TickRecord{}), errNoMatch)
	assert.ErrorIs(t, b.RecordWarning(&core.WarningRecord{}), errNoMatch)
	assert.ErrorIs(t, b.EndMatch(&core.GameEnd{}), errNoMatch)
}

func TestRecordTick_QueuesUntilFlush(t *testing.T) {
	b := newTestBackend(t)
	m := testMatch()
	require.NoError(t, b.StartMatch(m))

	for tick := range 3 {
		require.NoError(t, b.RecordTick(&core.TickRecord{Tick: tick, GameStateID: "gs", Action: core.Wait{}}))
	}
	msg := "hey"
	require.NoError(t, b.RecordWarning(&core.WarningRecord{Tick: 1, Warning: core.Warning{Kind: core.CustomWarning, Message: &msg}}))

	ticks, warnings := b.QueueLengths()
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 1, warnings)

	b.Flush()

	ticks, warnings = b.QueueLengths()
	assert.Zero(t, ticks)
	assert.Zero(t, warnings)

	var rows []model.Tick
	require.NoError(t, b.DB().Order("tick").Find(&rows, "match_id = ?", m.ID).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, "pass", rows[0].Action)
	assert.Equal(t, 2, rows[2].Tick)

	var w model.Warning
	require.NoError(t, b.DB().First(&w).Error)
	assert.Equal(t, "custom", w.Kind)
	require.NotNil(t, w.Message)
	assert.Equal(t, "hey", *w.Message)
}

func TestEndMatch_StoresResults(t *testing.T) {
	b := newTestBackend(t)
	m := testMatch()
	require.NoError(t, b.StartMatch(m))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 0, Action: core.CaptureZone{}}))

	end := &core.GameEnd{Teams: []core.EndGameTeam{
		{Name: "red", Score: 5, Players: []core.EndGamePlayer{{ID: "p1", Kills: 2}}},
		{Name: "blue", Score: 3},
	}}
	require.NoError(t, b.EndMatch(end))

	var row model.Match
	require.NoError(t, b.DB().First(&row, "id = ?", m.ID).Error)
	assert.Equal(t, "red", row.Winner)
	require.NotNil(t, row.EndedAt)

	var results []model.TeamResult
	require.NoError(t, b.DB().Order("score desc").Find(&results).Error)
	require.Len(t, results, 2)
	assert.Equal(t, "red", results[0].Team)

	var count int64
	require.NoError(t, b.DB().Model(&model.Tick{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "queued ticks are flushed before the match closes")

	assert.ErrorIs(t, b.RecordTick(&core.TickRecord{}), errNoMatch, "match is closed")
}

func TestClose_FlushesQueues(t *testing.T) {
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)
	b := New(Dependencies{DB: db, WriteInterval: time.Hour})
	require.NoError(t, b.Init())

	require.NoError(t, b.StartMatch(testMatch()))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 9}))
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.Tick{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWriteLoop_FlushesPeriodically(t *testing.T) {
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)
	b := New(Dependencies{DB: db, WriteInterval: 20 * time.Millisecond})
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartMatch(testMatch()))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 1}))

	assert.Eventually(t, func() bool {
		ticks, _ := b.QueueLengths()
		return ticks == 0
	}, 2*time.Second, 10*time.Millisecond)
}
