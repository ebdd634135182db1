package policy

import (
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/perception"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

// enemyPenalty is added to tiles holding an enemy tank so navigation routes
// around them.
const enemyPenalty = 50.0

// ZoneSeeker heads for the nearest zone its team does not hold and tries
// to capture it once inside. Navigation is delegated to the server via GoTo.
type ZoneSeeker struct {
	Costs     core.GotoCosts
	Penalties core.GotoPenalties
}

func NewZoneSeeker() *ZoneSeeker {
	return &ZoneSeeker{Costs: core.DefaultGotoCosts(), Penalties: core.DefaultGotoPenalties()}
}

func (z *ZoneSeeker) Decide(s core.Snapshot, me perception.Result) core.Action {
	if !me.Found {
		return core.Wait{}
	}
	self := me.Tank.OwnerID

	if zone, ok := perception.ZoneUnder(s, me); ok && !z.heldByUs(s, zone, self) {
		return core.CaptureZone{}
	}

	target, ok := z.nearestOpenZone(s, me, self)
	if !ok {
		return core.Wait{}
	}
	x, y := target.Center()

	penalties := z.Penalties
	penalties.PerTile = append([]core.PerTilePenalty(nil), z.Penalties.PerTile...)
	seen := make(map[[2]int]bool, len(penalties.PerTile))
	for _, p := range penalties.PerTile {
		seen[[2]int{p.X, p.Y}] = true
	}
	for _, enemy := range perception.Enemies(s, self) {
		key := [2]int{enemy.X, enemy.Y}
		if seen[key] {
			continue
		}
		seen[key] = true
		penalties.PerTile = append(penalties.PerTile, core.PerTilePenalty{X: enemy.X, Y: enemy.Y, Penalty: enemyPenalty})
	}

	g, err := core.NewGoTo(s.Grid, x, y,
		core.WithTurretRotation(core.RotateNone),
		core.WithCosts(z.Costs),
		core.WithPenalties(penalties),
	)
	if err != nil {
		return core.Wait{}
	}
	return g
}

func (z *ZoneSeeker) heldByUs(s core.Snapshot, zone core.Zone, self string) bool {
	holder, ok := zone.Holder()
	if !ok {
		return false
	}
	if _, retaken := zone.Status.(core.BeingRetaken); retaken {
		return false
	}
	return holder == self || s.Teammates(holder, self)
}

func (z *ZoneSeeker) nearestOpenZone(s core.Snapshot, me perception.Result, self string) (core.Zone, bool) {
	var best core.Zone
	bestDist := -1
	for _, zone := range s.Zones {
		if z.heldByUs(s, zone, self) {
			continue
		}
		cx, cy := zone.Center()
		d := abs(cx-me.X) + abs(cy-me.Y)
		if bestDist < 0 || d < bestDist {
			best, bestDist = zone, d
		}
	}
	return best, bestDist >= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
