// Package v1 contains the v1 JSON export format for a recorded match.
package v1

import (
	"encoding/json"
	"time"
)

// SchemaVersion is written into every export.
const SchemaVersion = 1

// Export is the root JSON structure for v1 format
type Export struct {
	SchemaVersion int        `json:"schemaVersion"`
	MatchID       string     `json:"matchId"`
	MatchName     string     `json:"matchName"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt"`
	Complete      bool       `json:"complete"` // false when the session ended before gameEnded
	Lobby         Lobby      `json:"lobby"`
	Stats         Stats      `json:"stats"`
	Ticks         []Tick     `json:"ticks"`
	Warnings      []Warning  `json:"warnings"`
	Result        *Result    `json:"result,omitempty"`
}

// Lobby is the session setup the server sent before the game
type Lobby struct {
	PlayerID            string `json:"playerId"`
	TeamName            string `json:"teamName"`
	TankType            string `json:"tankType,omitempty"`
	GridDimension       int    `json:"gridDimension"`
	NumberOfPlayers     int    `json:"numberOfPlayers"`
	Seed                int    `json:"seed"`
	BroadcastIntervalMs int64  `json:"broadcastIntervalMs"`
	SandboxMode         bool   `json:"sandboxMode"`
	EagerBroadcast      bool   `json:"eagerBroadcast"`
	Version             string `json:"version"`
	Teams               []Team `json:"teams"`
}

// Team is a lobby roster entry
type Team struct {
	Name    string   `json:"name"`
	Color   uint32   `json:"color"`
	Players []Player `json:"players"`
}

// Player is a lobby or end-of-game player; Kills is set only in results
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	TankType string `json:"tankType"`
	Kills    *int   `json:"kills,omitempty"`
}

// Tick is one processed snapshot and the decision made for it
type Tick struct {
	Tick           int             `json:"tick"`
	Time           time.Time       `json:"time"`
	GameStateID    string          `json:"gameStateId"`
	Action         string          `json:"action"`
	ActionPayload  json.RawMessage `json:"actionPayload,omitempty"`
	TankFound      bool            `json:"tankFound"`
	X              int             `json:"x"`
	Y              int             `json:"y"`
	Health         *int            `json:"health,omitempty"`
	Zone           string          `json:"zone,omitempty"`
	DecisionTimeUs int64           `json:"decisionTimeUs"`
	Skipped        bool            `json:"skipped"`
}

// Warning is server feedback received during the match
type Warning struct {
	Tick    int       `json:"tick"`
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Message *string   `json:"message,omitempty"`
}

// Result holds the final scores
type Result struct {
	Winner string       `json:"winner,omitempty"` // empty on a tie
	Teams  []TeamResult `json:"teams"`
}

// TeamResult is one team's final score
type TeamResult struct {
	Name    string   `json:"name"`
	Color   uint32   `json:"color"`
	Score   int      `json:"score"`
	Players []Player `json:"players"`
}

// Stats summarises the decision loop over the match
type Stats struct {
	Ticks          int            `json:"ticks"`
	Skipped        int            `json:"skipped"`
	Warnings       int            `json:"warnings"`
	TankMissing    int            `json:"tankMissing"`
	AvgDecisionUs  int64          `json:"avgDecisionUs"`
	MaxDecisionUs  int64          `json:"maxDecisionUs"`
	ActionCounts   map[string]int `json:"actionCounts"`
	WarningsByKind map[string]int `json:"warningsByKind"`
}
