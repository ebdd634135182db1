package packet

import "encoding/json"

// Inbound payloads mirror the server JSON one to one. Optional fields are
// pointers so absence survives decoding; the parser turns these into core
// types and checks invariants.

// LobbyPlayer is one roster entry in lobbyData.
type LobbyPlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	TankType int    `json:"tankType"`
}

// LobbyTeam is one team in lobbyData.
type LobbyTeam struct {
	Name    string        `json:"name"`
	Color   uint32        `json:"color"`
	Players []LobbyPlayer `json:"players"`
}

// ServerSettings is the server configuration sent with lobbyData.
type ServerSettings struct {
	GridDimension     int     `json:"gridDimension"`
	NumberOfPlayers   int     `json:"numberOfPlayers"`
	Seed              int     `json:"seed"`
	BroadcastInterval int     `json:"broadcastInterval"` // milliseconds
	SandboxMode       bool    `json:"sandboxMode"`
	EagerBroadcast    bool    `json:"eagerBroadcast"`
	MatchName         *string `json:"matchName"`
	Version           string  `json:"version"`
}

// LobbyDataPayload is sent once the connection is accepted.
type LobbyDataPayload struct {
	PlayerID       string         `json:"playerId"`
	TeamName       string         `json:"teamName"`
	Teams          []LobbyTeam    `json:"teams"`
	ServerSettings ServerSettings `json:"serverSettings"`
}

// Player is a roster entry in gameState.
type Player struct {
	ID           string `json:"id"`
	Nickname     string `json:"nickname"`
	Ping         int    `json:"ping"`
	Score        *int   `json:"score,omitempty"`
	TicksToRegen *int   `json:"ticksToRegen,omitempty"`
}

// Team is a team entry in gameState.
type Team struct {
	Name    string   `json:"name"`
	Color   uint32   `json:"color"`
	Score   *int     `json:"score,omitempty"`
	Players []Player `json:"players"`
}

// Object is one tile occupant: a discriminant and its type-specific payload.
type Object struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Occupant discriminants.
const (
	ObjectWall   = "wall"
	ObjectTank   = "tank"
	ObjectBullet = "bullet"
	ObjectLaser  = "laser"
	ObjectMine   = "mine"
)

// Tile is one grid cell. ZoneName is a single character, "?" or absent
// outside zones.
type Tile struct {
	Objects   []Object `json:"objects"`
	IsVisible bool     `json:"isVisible"`
	ZoneName  *string  `json:"zoneName,omitempty"`
}

// WallPayload is optional on the wire; a wall without one is solid.
type WallPayload struct {
	Type string `json:"type"` // "solid" or "penetrable"
}

// TurretPayload is the turret part of a tank.
type TurretPayload struct {
	Direction            int  `json:"direction"`
	BulletCount          *int `json:"bulletCount,omitempty"`
	TicksToBullet        *int `json:"ticksToBullet,omitempty"`
	TicksToDoubleBullet  *int `json:"ticksToDoubleBullet,omitempty"`
	TicksToLaser         *int `json:"ticksToLaser,omitempty"`
	TicksToHealingBullet *int `json:"ticksToHealingBullet,omitempty"`
	TicksToStunBullet    *int `json:"ticksToStunBullet,omitempty"`
}

// TankPayload carries restricted fields only for the controlled tank.
// Visibility rows are strings of '0' and '1'.
type TankPayload struct {
	OwnerID      string        `json:"ownerId"`
	Type         int           `json:"type"`
	Direction    int           `json:"direction"`
	Turret       TurretPayload `json:"turret"`
	Health       *int          `json:"health,omitempty"`
	TicksToMine  *int          `json:"ticksToMine,omitempty"`
	TicksToRadar *int          `json:"ticksToRadar,omitempty"`
	IsUsingRadar *bool         `json:"isUsingRadar,omitempty"`
	Visibility   []string      `json:"visibility,omitempty"`
}

// BulletPayload is a projectile.
type BulletPayload struct {
	ID        int     `json:"id"`
	Type      int     `json:"type"`
	Speed     float64 `json:"speed"`
	Direction int     `json:"direction"`
}

// LaserPayload is a laser beam segment.
type LaserPayload struct {
	ID          int `json:"id"`
	Orientation int `json:"orientation"`
}

// MinePayload is a mine; explosionRemainingTicks is set once it is armed.
type MinePayload struct {
	ID                      int  `json:"id"`
	ExplosionRemainingTicks *int `json:"explosionRemainingTicks,omitempty"`
}

// ZoneStatusPayload is the union of every status field.
type ZoneStatusPayload struct {
	Type           string  `json:"type"`
	RemainingTicks *int    `json:"remainingTicks,omitempty"`
	PlayerID       *string `json:"playerId,omitempty"`
	CapturedByID   *string `json:"capturedById,omitempty"`
	RetakenByID    *string `json:"retakenById,omitempty"`
}

// Zone is a capturable rectangle.
type Zone struct {
	X      int               `json:"x"`
	Y      int               `json:"y"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Name   string            `json:"name"`
	Status ZoneStatusPayload `json:"status"`
}

// Map is the board part of gameState. Tiles are row-major.
type Map struct {
	Tiles [][]Tile `json:"tiles"`
	Zones []Zone   `json:"zones"`
}

// GameStatePayload is one tick.
type GameStatePayload struct {
	ID       string  `json:"id"`
	Tick     int     `json:"tick"`
	PlayerID *string `json:"playerId,omitempty"`
	Teams    []Team  `json:"teams"`
	Map      Map     `json:"map"`
}

// EndGamePlayer is a final per-player result.
type EndGamePlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Kills    int    `json:"kills"`
	TankType int    `json:"tankType"`
}

// EndGameTeam is a final per-team result.
type EndGameTeam struct {
	Name    string          `json:"name"`
	Color   uint32          `json:"color"`
	Score   int             `json:"score"`
	Players []EndGamePlayer `json:"players"`
}

// GameEndPayload is sent once when the match is over.
type GameEndPayload struct {
	Teams []EndGameTeam `json:"teams"`
}

// CustomWarningPayload carries free-form server feedback.
type CustomWarningPayload struct {
	Message string `json:"message"`
}

// ErrorPayload accompanies the invalid*Error packets.
type ErrorPayload struct {
	Message string `json:"message"`
}
