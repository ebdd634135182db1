package v1

import (
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
)

// MatchData contains all the data needed to build an export
type MatchData struct {
	Match    *core.Match
	Ticks    []core.TickRecord
	Warnings []core.WarningRecord
	Result   *core.GameEnd
}

// Build converts recorded match data into the v1 export format.
func Build(data *MatchData) Export {
	export := Export{
		SchemaVersion: SchemaVersion,
		Ticks:         make([]Tick, 0, len(data.Ticks)),
		Warnings:      make([]Warning, 0, len(data.Warnings)),
		Stats: Stats{
			ActionCounts:   make(map[string]int),
			WarningsByKind: make(map[string]int),
		},
	}

	if m := data.Match; m != nil {
		export.MatchID = m.ID
		export.MatchName = m.Name()
		export.StartedAt = m.StartedAt
		export.Lobby = buildLobby(m.Lobby)
	}

	var total int64
	for _, r := range data.Ticks {
		t := buildTick(r)
		export.Ticks = append(export.Ticks, t)

		export.Stats.Ticks++
		if r.Skipped {
			export.Stats.Skipped++
		}
		if !r.TankFound {
			export.Stats.TankMissing++
		}
		if t.Action != "" {
			export.Stats.ActionCounts[t.Action]++
		}
		total += t.DecisionTimeUs
		export.Stats.MaxDecisionUs = max(export.Stats.MaxDecisionUs, t.DecisionTimeUs)
	}
	if export.Stats.Ticks > 0 {
		export.Stats.AvgDecisionUs = total / int64(export.Stats.Ticks)
	}

	for _, w := range data.Warnings {
		kind := w.Warning.Kind.String()
		export.Warnings = append(export.Warnings, Warning{
			Tick:    w.Tick,
			Time:    w.Time,
			Kind:    kind,
			Message: w.Warning.Message,
		})
		export.Stats.Warnings++
		export.Stats.WarningsByKind[kind]++
	}

	if data.Result != nil {
		export.Complete = true
		export.Result = buildResult(*data.Result)
	}

	return export
}

func buildLobby(l core.LobbyData) Lobby {
	lobby := Lobby{
		PlayerID:            l.PlayerID,
		TeamName:            l.TeamName,
		GridDimension:       l.GridDimension,
		NumberOfPlayers:     l.NumberOfPlayers,
		Seed:                l.Seed,
		BroadcastIntervalMs: l.BroadcastInterval.Milliseconds(),
		SandboxMode:         l.SandboxMode,
		EagerBroadcast:      l.EagerBroadcast,
		Version:             l.Version,
		Teams:               make([]Team, 0, len(l.Teams)),
	}
	if kind, ok := l.ControlledTankKind(); ok {
		lobby.TankType = kind.String()
	}
	for _, t := range l.Teams {
		team := Team{Name: t.Name, Color: t.Color, Players: make([]Player, 0, len(t.Players))}
		for _, p := range t.Players {
			team.Players = append(team.Players, Player{ID: p.ID, Nickname: p.Nickname, TankType: p.TankType.String()})
		}
		lobby.Teams = append(lobby.Teams, team)
	}
	return lobby
}

func buildTick(r core.TickRecord) Tick {
	t := Tick{
		Tick:           r.Tick,
		Time:           r.Time,
		GameStateID:    r.GameStateID,
		TankFound:      r.TankFound,
		X:              r.TankX,
		Y:              r.TankY,
		Health:         r.Health,
		DecisionTimeUs: r.DecisionTime.Microseconds(),
		Skipped:        r.Skipped,
	}
	if r.Zone != nil {
		t.Zone = string(*r.Zone)
	}
	if r.Action != nil {
		if env, err := packet.EncodeAction(r.GameStateID, r.Action); err == nil {
			t.Action = string(env.Type)
			t.ActionPayload = env.Payload
		}
	}
	return t
}

func buildResult(end core.GameEnd) *Result {
	res := &Result{Teams: make([]TeamResult, 0, len(end.Teams))}
	if w, ok := end.Winner(); ok {
		res.Winner = w.Name
	}
	for _, t := range end.Teams {
		tr := TeamResult{Name: t.Name, Color: t.Color, Score: t.Score, Players: make([]Player, 0, len(t.Players))}
		for _, p := range t.Players {
			kills := p.Kills
			tr.Players = append(tr.Players, Player{ID: p.ID, Nickname: p.Nickname, TankType: p.TankType.String(), Kills: &kills})
		}
		res.Teams = append(res.Teams, tr)
	}
	return res
}
