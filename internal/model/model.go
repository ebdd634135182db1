package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Match{},
	&Tick{},
	&Warning{},
	&TeamResult{},
}

// Match is one recorded session, created from lobby data
type Match struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	Name                string         `json:"name" gorm:"size:200"`
	PlayerID            string         `json:"playerId" gorm:"size:64;index:idx_match_player"`
	TeamName            string         `json:"teamName" gorm:"size:64"`
	TankType            string         `json:"tankType" gorm:"size:16"`
	GridDimension       int            `json:"gridDimension"`
	NumberOfPlayers     int            `json:"numberOfPlayers"`
	Seed                int            `json:"seed"`
	BroadcastIntervalMs int64          `json:"broadcastIntervalMs"`
	SandboxMode         bool           `json:"sandboxMode"`
	EagerBroadcast      bool           `json:"eagerBroadcast"`
	ServerVersion       string         `json:"serverVersion" gorm:"size:64"`
	Teams               datatypes.JSON `json:"teams"` // lobby roster
	StartedAt           time.Time      `json:"startedAt" gorm:"index:idx_match_started"`
	EndedAt             *time.Time     `json:"endedAt"`
	Winner              string         `json:"winner" gorm:"size:64"` // empty on a tie

	Ticks    []Tick
	Warnings []Warning
	Results  []TeamResult
}

func (*Match) TableName() string {
	return "matches"
}

// Tick is one processed snapshot and the decision made for it
type Tick struct {
	ID             uint           `json:"id" gorm:"primarykey;autoIncrement"`
	MatchID        uuid.UUID      `json:"matchId" gorm:"type:uuid;index:idx_tick_match_tick,priority:1"`
	Match          Match          `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MatchID;"`
	Time           time.Time      `json:"time"`
	Tick           int            `json:"tick" gorm:"index:idx_tick_match_tick,priority:2"`
	GameStateID    string         `json:"gameStateId" gorm:"size:64"`
	Action         string         `json:"action" gorm:"size:32"`
	ActionPayload  datatypes.JSON `json:"actionPayload"`
	TankFound      bool           `json:"tankFound"`
	TankX          int            `json:"tankX"`
	TankY          int            `json:"tankY"`
	Health         *int           `json:"health"`
	Zone           *string        `json:"zone" gorm:"size:1"`
	DecisionTimeUs int64          `json:"decisionTimeUs"`
	Skipped        bool           `json:"skipped"`
}

func (*Tick) TableName() string {
	return "ticks"
}

// Warning is advisory server feedback received during a match
type Warning struct {
	ID      uint      `json:"id" gorm:"primarykey;autoIncrement"`
	MatchID uuid.UUID `json:"matchId" gorm:"type:uuid;index:idx_warning_match"`
	Match   Match     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MatchID;"`
	Time    time.Time `json:"time"`
	Tick    int       `json:"tick"`
	Kind    string    `json:"kind" gorm:"size:64"`
	Message *string   `json:"message"`
}

func (*Warning) TableName() string {
	return "warnings"
}

// TeamResult is a final team score with its players' results
type TeamResult struct {
	ID      uint           `json:"id" gorm:"primarykey;autoIncrement"`
	MatchID uuid.UUID      `json:"matchId" gorm:"type:uuid;index:idx_result_match"`
	Match   Match          `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MatchID;"`
	Team    string         `json:"team" gorm:"size:64"`
	Color   uint32         `json:"color"`
	Score   int            `json:"score"`
	Players datatypes.JSON `json:"players"`
}

func (*TeamResult) TableName() string {
	return "team_results"
}
