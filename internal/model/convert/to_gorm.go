// Package convert provides functions to convert core records to GORM models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/model"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// rosterPlayer is the JSON shape of a lobby or end-of-game player.
type rosterPlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	TankType string `json:"tankType"`
	Kills    *int   `json:"kills,omitempty"`
}

type rosterTeam struct {
	Name    string         `json:"name"`
	Color   uint32         `json:"color"`
	Players []rosterPlayer `json:"players"`
}

func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}

// CoreToMatch converts a core.Match to a GORM model.Match.
// The match ID must already be a UUID string.
func CoreToMatch(m core.Match) (model.Match, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return model.Match{}, fmt.Errorf("match id %q: %w", m.ID, err)
	}

	l := m.Lobby
	teams := make([]rosterTeam, 0, len(l.Teams))
	for _, t := range l.Teams {
		rt := rosterTeam{Name: t.Name, Color: t.Color, Players: make([]rosterPlayer, 0, len(t.Players))}
		for _, p := range t.Players {
			rt.Players = append(rt.Players, rosterPlayer{ID: p.ID, Nickname: p.Nickname, TankType: p.TankType.String()})
		}
		teams = append(teams, rt)
	}

	var tankType string
	if kind, ok := l.ControlledTankKind(); ok {
		tankType = kind.String()
	}

	return model.Match{
		ID:                  id,
		Name:                m.Name(),
		PlayerID:            l.PlayerID,
		TeamName:            l.TeamName,
		TankType:            tankType,
		GridDimension:       l.GridDimension,
		NumberOfPlayers:     l.NumberOfPlayers,
		Seed:                l.Seed,
		BroadcastIntervalMs: l.BroadcastInterval.Milliseconds(),
		SandboxMode:         l.SandboxMode,
		EagerBroadcast:      l.EagerBroadcast,
		ServerVersion:       l.Version,
		Teams:               toJSON(teams),
		StartedAt:           m.StartedAt,
	}, nil
}

// CoreToTick converts a core.TickRecord to a GORM model.Tick. The action is
// stored as the packet type and payload that were (or would have been) sent.
func CoreToTick(matchID uuid.UUID, r core.TickRecord) model.Tick {
	t := model.Tick{
		MatchID:        matchID,
		Time:           r.Time,
		Tick:           r.Tick,
		GameStateID:    r.GameStateID,
		TankFound:      r.TankFound,
		TankX:          r.TankX,
		TankY:          r.TankY,
		Health:         r.Health,
		DecisionTimeUs: r.DecisionTime.Microseconds(),
		Skipped:        r.Skipped,
	}
	if r.Zone != nil {
		z := string(*r.Zone)
		t.Zone = &z
	}
	if r.Action != nil {
		if env, err := packet.EncodeAction(r.GameStateID, r.Action); err == nil {
			t.Action = string(env.Type)
			t.ActionPayload = datatypes.JSON(env.Payload)
		}
	}
	return t
}

// CoreToWarning converts a core.WarningRecord to a GORM model.Warning.
func CoreToWarning(matchID uuid.UUID, w core.WarningRecord) model.Warning {
	return model.Warning{
		MatchID: matchID,
		Time:    w.Time,
		Tick:    w.Tick,
		Kind:    w.Warning.Kind.String(),
		Message: w.Warning.Message,
	}
}

// CoreToTeamResults converts the final scores to one GORM row per team.
func CoreToTeamResults(matchID uuid.UUID, end core.GameEnd) []model.TeamResult {
	out := make([]model.TeamResult, 0, len(end.Teams))
	for _, t := range end.Teams {
		players := make([]rosterPlayer, 0, len(t.Players))
		for _, p := range t.Players {
			kills := p.Kills
			players = append(players, rosterPlayer{ID: p.ID, Nickname: p.Nickname, TankType: p.TankType.String(), Kills: &kills})
		}
		out = append(out, model.TeamResult{
			MatchID: matchID,
			Team:    t.Name,
			Color:   t.Color,
			Score:   t.Score,
			Players: toJSON(players),
		})
	}
	return out
}

