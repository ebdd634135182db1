// Package perception extracts the controlled tank from a snapshot.
// Everything here is a pure function of its inputs.
package perception

import "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"

// Result is the perception outcome for one tick. Found is false when the
// controlled tank is absent (destroyed, not yet spawned); that is a valid
// state, not an error.
type Result struct {
	Found bool
	Tank  core.Tank
	X     int
	Y     int
}

// Sighting is a tank and where it was seen.
type Sighting struct {
	Tank core.Tank
	X    int
	Y    int
}

// Locate returns the first tank owned by controlledID, scanning rows top to
// bottom, columns left to right, then occupants in tile order.
func Locate(s core.Snapshot, controlledID string) Result {
	var res Result
	s.Grid.Scan(func(x, y int, t core.Tile) bool {
		for _, o := range t.Objects {
			if tank, ok := o.(core.Tank); ok && tank.OwnerID == controlledID {
				res = Result{Found: true, Tank: tank, X: x, Y: y}
				return false
			}
		}
		return true
	})
	return res
}

// Tanks lists every tank in the same scan order as Locate.
func Tanks(s core.Snapshot) []Sighting {
	var out []Sighting
	s.Grid.Scan(func(x, y int, t core.Tile) bool {
		for _, o := range t.Objects {
			if tank, ok := o.(core.Tank); ok {
				out = append(out, Sighting{Tank: tank, X: x, Y: y})
			}
		}
		return true
	})
	return out
}

// Enemies lists tanks whose owners are not on the controlled player's team.
// Tanks of players missing from the roster count as enemies.
func Enemies(s core.Snapshot, controlledID string) []Sighting {
	var out []Sighting
	for _, sight := range Tanks(s) {
		if sight.Tank.OwnerID == controlledID || s.Teammates(controlledID, sight.Tank.OwnerID) {
			continue
		}
		out = append(out, sight)
	}
	return out
}

// ZoneUnder returns the zone the located tank stands in. This is the
// implicit target of a CaptureZone action.
func ZoneUnder(s core.Snapshot, r Result) (core.Zone, bool) {
	if !r.Found {
		return core.Zone{}, false
	}
	return s.ZoneAt(r.X, r.Y)
}
