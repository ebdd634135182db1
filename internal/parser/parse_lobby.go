package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
)

// ParseLobbyData converts the session-init payload.
func (p *Parser) ParseLobbyData(data packet.LobbyDataPayload) (core.LobbyData, error) {
	if data.PlayerID == "" {
		return core.LobbyData{}, &core.DecodeError{Path: "playerId", Reason: "missing"}
	}
	s := data.ServerSettings
	if s.BroadcastInterval < 0 {
		return core.LobbyData{}, &core.DecodeError{
			Path:   "serverSettings.broadcastInterval",
			Reason: fmt.Sprintf("negative interval %d", s.BroadcastInterval),
		}
	}

	lobby := core.LobbyData{
		PlayerID:          data.PlayerID,
		TeamName:          data.TeamName,
		SandboxMode:       s.SandboxMode,
		MatchName:         s.MatchName,
		GridDimension:     s.GridDimension,
		NumberOfPlayers:   s.NumberOfPlayers,
		Seed:              s.Seed,
		BroadcastInterval: time.Duration(s.BroadcastInterval) * time.Millisecond,
		EagerBroadcast:    s.EagerBroadcast,
		Version:           s.Version,
	}
	for ti, t := range data.Teams {
		team := core.LobbyTeam{Name: t.Name, Color: t.Color}
		for pi, pl := range t.Players {
			kind, err := parseTankKind(fmt.Sprintf("teams[%d].players[%d].tankType", ti, pi), pl.TankType)
			if err != nil {
				return core.LobbyData{}, err
			}
			team.Players = append(team.Players, core.LobbyPlayer{ID: pl.ID, Nickname: pl.Nickname, TankType: kind})
		}
		lobby.Teams = append(lobby.Teams, team)
	}

	p.logger.Debug("Parsed lobby data",
		"playerId", lobby.PlayerID,
		"team", lobby.TeamName,
		"broadcastInterval", lobby.BroadcastInterval)
	return lobby, nil
}

// ParseGameEnd converts the final results.
func (p *Parser) ParseGameEnd(data packet.GameEndPayload) (core.GameEnd, error) {
	var end core.GameEnd
	for ti, t := range data.Teams {
		team := core.EndGameTeam{Name: t.Name, Color: t.Color, Score: t.Score}
		for pi, pl := range t.Players {
			kind, err := parseTankKind(fmt.Sprintf("teams[%d].players[%d].tankType", ti, pi), pl.TankType)
			if err != nil {
				return core.GameEnd{}, err
			}
			team.Players = append(team.Players, core.EndGamePlayer{
				ID:       pl.ID,
				Nickname: pl.Nickname,
				Kills:    pl.Kills,
				TankType: kind,
			})
		}
		end.Teams = append(end.Teams, team)
	}
	return end, nil
}

// ParseWarning converts one of the warning packets. Only customWarning
// carries a payload.
func (p *Parser) ParseWarning(t packet.Type, payload json.RawMessage) (core.Warning, error) {
	switch t {
	case packet.TypeCustomWarning:
		w := core.Warning{Kind: core.CustomWarning}
		if len(payload) == 0 {
			return w, nil
		}
		var raw packet.CustomWarningPayload
		if err := json.Unmarshal(payload, &raw); err != nil {
			return core.Warning{}, &core.DecodeError{Path: "payload", Reason: err.Error()}
		}
		w.Message = &raw.Message
		return w, nil
	case packet.TypePlayerAlreadyMadeActionWarning:
		return core.Warning{Kind: core.PlayerAlreadyMadeActionWarning}, nil
	case packet.TypeActionIgnoredDueToDeadWarning:
		return core.Warning{Kind: core.ActionIgnoredDueToDeadWarning}, nil
	case packet.TypeSlowResponseWarning:
		return core.Warning{Kind: core.SlowResponseWarning}, nil
	default:
		return core.Warning{}, &core.DecodeError{Path: "type", Reason: fmt.Sprintf("%q is not a warning", t)}
	}
}
