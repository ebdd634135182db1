// pkg/core/snapshot.go
package core

import "fmt"

// Player is one roster entry. Score and TicksToRegen are only sent for the
// controlled player (or when the server broadcasts scores).
type Player struct {
	ID           string
	Nickname     string
	Ping         int
	Score        *int
	TicksToRegen *int
}

// Team is a roster of players.
type Team struct {
	Name    string
	Color   uint32
	Score   *int
	Players []Player
}

// Snapshot is one tick of observable state. It is built once by NewSnapshot
// and replaced wholesale by the next tick; treat it as read-only.
type Snapshot struct {
	ID       string // echoed back in the response as gameStateId
	Tick     int
	Teams    []Team
	PlayerID *string
	Grid     Grid
	Zones    []Zone
}

// NewSnapshot checks the cross-structure invariants: zone names are unique
// and zones lie inside the grid, and every visibility mask matches the grid.
func NewSnapshot(id string, tick int, playerID *string, teams []Team, grid Grid, zones []Zone) (Snapshot, error) {
	if tick < 0 {
		return Snapshot{}, decodeErrorf("tick", "negative tick %d", tick)
	}

	seen := make(map[byte]bool, len(zones))
	for i, z := range zones {
		path := fmt.Sprintf("map.zones[%d]", i)
		if z.Name == NoZone || z.Name == 0 {
			return Snapshot{}, decodeErrorf(path, "zone name %q is reserved", z.Name)
		}
		if seen[z.Name] {
			return Snapshot{}, decodeErrorf(path, "duplicate zone name %q", z.Name)
		}
		seen[z.Name] = true
		if z.Width <= 0 || z.Height <= 0 ||
			!grid.InBounds(z.X, z.Y) || !grid.InBounds(z.X+z.Width-1, z.Y+z.Height-1) {
			return Snapshot{}, decodeErrorf(path, "zone %q (%d,%d %dx%d) outside %dx%d grid",
				z.Name, z.X, z.Y, z.Width, z.Height, grid.Width(), grid.Height())
		}
		if z.Status == nil {
			return Snapshot{}, decodeErrorf(path+".status", "missing status")
		}
	}

	var maskErr error
	grid.Scan(func(x, y int, t Tile) bool {
		for i, o := range t.Objects {
			tank, ok := o.(Tank)
			if !ok || tank.Visibility == nil {
				continue
			}
			if !maskMatches(tank.Visibility, grid) {
				maskErr = decodeErrorf(fmt.Sprintf("map.tiles[%d][%d].objects[%d].visibility", y, x, i),
					"mask is %dx%d, grid is %dx%d",
					tank.Visibility.Cols(), tank.Visibility.Rows(), grid.Width(), grid.Height())
				return false
			}
		}
		return true
	})
	if maskErr != nil {
		return Snapshot{}, maskErr
	}

	return Snapshot{
		ID:       id,
		Tick:     tick,
		Teams:    teams,
		PlayerID: playerID,
		Grid:     grid,
		Zones:    zones,
	}, nil
}

func maskMatches(m VisibilityMask, g Grid) bool {
	if m.Rows() != g.Height() {
		return false
	}
	for _, row := range m {
		if len(row) != g.Width() {
			return false
		}
	}
	return true
}

// Player finds a player and its team by id.
func (s Snapshot) Player(id string) (Player, Team, bool) {
	for _, team := range s.Teams {
		for _, p := range team.Players {
			if p.ID == id {
				return p, team, true
			}
		}
	}
	return Player{}, Team{}, false
}

// Teammates reports whether both players are on the same team.
func (s Snapshot) Teammates(a, b string) bool {
	_, ta, okA := s.Player(a)
	_, tb, okB := s.Player(b)
	return okA && okB && ta.Name == tb.Name
}

// Zone looks a zone up by name.
func (s Snapshot) Zone(name byte) (Zone, bool) {
	for _, z := range s.Zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}

// ZoneAt returns the zone containing (x, y).
func (s Snapshot) ZoneAt(x, y int) (Zone, bool) {
	for _, z := range s.Zones {
		if z.Contains(x, y) {
			return z, true
		}
	}
	return Zone{}, false
}
