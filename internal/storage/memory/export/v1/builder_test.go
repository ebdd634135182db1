package v1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Empty(t *testing.T) {
	export := Build(&MatchData{})

	assert.Equal(t, SchemaVersion, export.SchemaVersion)
	assert.False(t, export.Complete)
	assert.Nil(t, export.Result)
	assert.NotNil(t, export.Ticks)
	assert.NotNil(t, export.Warnings)
	assert.Zero(t, export.Stats.AvgDecisionUs)

	data, err := json.Marshal(export)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ticks":[]`)
}

func TestBuild_Lobby(t *testing.T) {
	name := "semi"
	export := Build(&MatchData{Match: &core.Match{
		ID: "m-1",
		Lobby: core.LobbyData{
			PlayerID:          "p2",
			MatchName:         &name,
			BroadcastInterval: 250 * time.Millisecond,
			Teams: []core.LobbyTeam{{Name: "blue", Players: []core.LobbyPlayer{
				{ID: "p1", TankType: core.Heavy},
				{ID: "p2", TankType: core.Light},
			}}},
		},
	}})

	assert.Equal(t, "m-1", export.MatchID)
	assert.Equal(t, "semi", export.MatchName)
	assert.Equal(t, int64(250), export.Lobby.BroadcastIntervalMs)
	assert.Equal(t, "light", export.Lobby.TankType)
	require.Len(t, export.Lobby.Teams, 1)
	assert.Equal(t, "heavy", export.Lobby.Teams[0].Players[0].TankType)
}

func TestBuild_TicksAndStats(t *testing.T) {
	zone := byte('A')
	export := Build(&MatchData{
		Match: &core.Match{ID: "m"},
		Ticks: []core.TickRecord{
			{Tick: 0, GameStateID: "a", Action: core.Wait{}, TankFound: true, DecisionTime: 100 * time.Microsecond},
			{Tick: 1, GameStateID: "b", Action: core.CaptureZone{}, TankFound: true, Zone: &zone, DecisionTime: 300 * time.Microsecond},
			{Tick: 2, GameStateID: "c", Action: core.Wait{}, DecisionTime: 200 * time.Microsecond, Skipped: true},
		},
		Warnings: []core.WarningRecord{
			{Tick: 2, Warning: core.Warning{Kind: core.SlowResponseWarning}},
		},
	})

	require.Len(t, export.Ticks, 3)
	assert.Equal(t, "captureZone", export.Ticks[1].Action)
	assert.Equal(t, "A", export.Ticks[1].Zone)
	assert.JSONEq(t, `{"gameStateId":"c"}`, string(export.Ticks[2].ActionPayload))

	assert.Equal(t, 3, export.Stats.Ticks)
	assert.Equal(t, 1, export.Stats.Skipped)
	assert.Equal(t, 1, export.Stats.TankMissing)
	assert.Equal(t, int64(200), export.Stats.AvgDecisionUs)
	assert.Equal(t, int64(300), export.Stats.MaxDecisionUs)
	assert.Equal(t, map[string]int{"pass": 2, "captureZone": 1}, export.Stats.ActionCounts)
	assert.Equal(t, map[string]int{"response was too slow": 1}, export.Stats.WarningsByKind)
}

func TestBuild_Result(t *testing.T) {
	export := Build(&MatchData{
		Result: &core.GameEnd{Teams: []core.EndGameTeam{
			{Name: "red", Score: 2, Players: []core.EndGamePlayer{{ID: "p1", Kills: 4}}},
			{Name: "blue", Score: 2},
		}},
	})

	assert.True(t, export.Complete)
	require.NotNil(t, export.Result)
	assert.Empty(t, export.Result.Winner, "tie has no winner")
	require.Len(t, export.Result.Teams, 2)
	require.NotNil(t, export.Result.Teams[0].Players[0].Kills)
	assert.Equal(t, 4, *export.Result.Teams[0].Players[0].Kills)
}
