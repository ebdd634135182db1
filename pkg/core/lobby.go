// pkg/core/lobby.go
package core

import (
	"fmt"
	"time"
)

// LobbyPlayer is a roster entry received before the game starts.
type LobbyPlayer struct {
	ID       string
	Nickname string
	TankType TankKind
}

// LobbyTeam groups lobby players.
type LobbyTeam struct {
	Name    string
	Color   uint32
	Players []LobbyPlayer
}

// LobbyData seeds a session. It is read once; nothing re-reads it per tick.
type LobbyData struct {
	PlayerID          string
	TeamName          string
	Teams             []LobbyTeam
	SandboxMode       bool
	MatchName         *string
	GridDimension     int
	NumberOfPlayers   int
	Seed              int
	BroadcastInterval time.Duration
	EagerBroadcast    bool
	Version           string
}

// ControlledTankKind returns the kind of the controlled player's tank.
func (l LobbyData) ControlledTankKind() (TankKind, bool) {
	for _, team := range l.Teams {
		for _, p := range team.Players {
			if p.ID == l.PlayerID {
				return p.TankType, true
			}
		}
	}
	return 0, false
}

// EndGamePlayer is a final per-player result.
type EndGamePlayer struct {
	ID       string
	Nickname string
	Kills    int
	TankType TankKind
}

// EndGameTeam is a final per-team result.
type EndGameTeam struct {
	Name    string
	Color   uint32
	Score   int
	Players []EndGamePlayer
}

// GameEnd is consumed for reporting only.
type GameEnd struct {
	Teams []EndGameTeam
}

// Winner returns the team with the highest score; ok is false on a tie or
// an empty result.
func (g GameEnd) Winner() (EndGameTeam, bool) {
	best, tied := -1, false
	for i, t := range g.Teams {
		switch {
		case best < 0 || t.Score > g.Teams[best].Score:
			best, tied = i, false
		case t.Score == g.Teams[best].Score:
			tied = true
		}
	}
	if best < 0 || tied {
		return EndGameTeam{}, false
	}
	return g.Teams[best], true
}

// WarningKind classifies advisory server feedback.
type WarningKind uint8

const (
	CustomWarning WarningKind = iota
	PlayerAlreadyMadeActionWarning
	ActionIgnoredDueToDeadWarning
	SlowResponseWarning
)

func (k WarningKind) String() string {
	switch k {
	case CustomWarning:
		return "custom"
	case PlayerAlreadyMadeActionWarning:
		return "player already made an action"
	case ActionIgnoredDueToDeadWarning:
		return "action ignored because tank is dead"
	case SlowResponseWarning:
		return "response was too slow"
	default:
		return fmt.Sprintf("WarningKind(%d)", uint8(k))
	}
}

// Warning is operational feedback; it never mutates state.
type Warning struct {
	Kind    WarningKind
	Message *string // custom warnings only
}
