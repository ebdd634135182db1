// pkg/core/goto.go
package core

import (
	"fmt"
	"math"
)

// GotoCosts weighs each unit action of a path.
type GotoCosts struct {
	Forward  float64
	Backward float64
	Rotate   float64
}

// DefaultGotoCosts is used when a GoTo carries no costs.
func DefaultGotoCosts() GotoCosts {
	return GotoCosts{Forward: 1.0, Backward: 1.5, Rotate: 1.5}
}

// PerTilePenalty overrides the blanket penalties for one cell.
type PerTilePenalty struct {
	X       int
	Y       int
	Penalty float64
}

// GotoPenalties are added when a path enters a tile.
type GotoPenalties struct {
	Blindly float64 // tile not currently visible
	Bullet  float64
	Mine    float64
	Laser   float64
	PerTile []PerTilePenalty
}

// DefaultGotoPenalties is used when a GoTo carries no penalties.
func DefaultGotoPenalties() GotoPenalties {
	return GotoPenalties{Blindly: 5.0, Bullet: 20.0, Mine: 20.0, Laser: 20.0}
}

// TileCost is the penalty for entering tile (x, y). A per-tile override
// replaces the blanket penalties for that cell.
func (p GotoPenalties) TileCost(x, y int, t Tile) float64 {
	for _, o := range p.PerTile {
		if o.X == x && o.Y == y {
			return o.Penalty
		}
	}
	var h hazards
	for _, occ := range t.Objects {
		occ.Accept(&h)
	}
	cost := 0.0
	if !t.Visible {
		cost += p.Blindly
	}
	if h.bullet {
		cost += p.Bullet
	}
	if h.mine {
		cost += p.Mine
	}
	if h.laser {
		cost += p.Laser
	}
	return cost
}

type hazards struct {
	bullet, mine, laser bool
}

func (h *hazards) VisitWall(Wall)     {}
func (h *hazards) VisitTank(Tank)     {}
func (h *hazards) VisitBullet(Bullet) { h.bullet = true }
func (h *hazards) VisitMine(Mine)     { h.mine = true }
func (h *hazards) VisitLaser(Laser)   { h.laser = true }

// GoTo asks an external evaluator to navigate to (X, Y). nil optional
// fields mean "evaluator's choice" for the turret and defaults for weights.
type GoTo struct {
	X              int
	Y              int
	TurretRotation *RotationDirection
	Costs          *GotoCosts
	Penalties      *GotoPenalties
}

// GoToOption customizes NewGoTo.
type GoToOption func(*GoTo)

func WithTurretRotation(r RotationDirection) GoToOption {
	return func(g *GoTo) { g.TurretRotation = &r }
}

func WithCosts(c GotoCosts) GoToOption {
	return func(g *GoTo) { g.Costs = &c }
}

func WithPenalties(p GotoPenalties) GoToOption {
	return func(g *GoTo) { g.Penalties = &p }
}

// NewGoTo builds a navigation request for grid. The target and every
// per-tile override must lie inside the grid.
func NewGoTo(grid Grid, x, y int, opts ...GoToOption) (GoTo, error) {
	g := GoTo{X: x, Y: y}
	for _, opt := range opts {
		opt(&g)
	}
	if err := g.Validate(grid); err != nil {
		return GoTo{}, err
	}
	return g, nil
}

// Validate checks the request against grid bounds and weight sanity.
func (g GoTo) Validate(grid Grid) error {
	if !grid.InBounds(g.X, g.Y) {
		return decodeErrorf("goTo", "target (%d,%d) outside %dx%d grid", g.X, g.Y, grid.Width(), grid.Height())
	}
	if g.TurretRotation != nil && !g.TurretRotation.Valid() {
		return decodeErrorf("goTo.turretRotation", "invalid rotation %d", *g.TurretRotation)
	}
	if c := g.Costs; c != nil {
		for _, w := range []weight{{"forward", c.Forward}, {"backward", c.Backward}, {"rotate", c.Rotate}} {
			if err := w.check("goTo.costs."); err != nil {
				return err
			}
		}
	}
	if p := g.Penalties; p != nil {
		for _, w := range []weight{{"blindly", p.Blindly}, {"bullet", p.Bullet}, {"mine", p.Mine}, {"laser", p.Laser}} {
			if err := w.check("goTo.penalties."); err != nil {
				return err
			}
		}
		seen := make(map[[2]int]bool, len(p.PerTile))
		for i, t := range p.PerTile {
			path := fmt.Sprintf("goTo.penalties.perTile[%d]", i)
			if err := (weight{"penalty", t.Penalty}).check(path + "."); err != nil {
				return err
			}
			if !grid.InBounds(t.X, t.Y) {
				return decodeErrorf(path, "(%d,%d) outside %dx%d grid", t.X, t.Y, grid.Width(), grid.Height())
			}
			if seen[[2]int{t.X, t.Y}] {
				return decodeErrorf(path, "duplicate override for (%d,%d)", t.X, t.Y)
			}
			seen[[2]int{t.X, t.Y}] = true
		}
	}
	return nil
}

// weight is one named cost or penalty, checked in declaration order.
type weight struct {
	name  string
	value float64
}

func (w weight) check(prefix string) error {
	if math.IsNaN(w.value) || math.IsInf(w.value, 0) || w.value < 0 {
		return decodeErrorf(prefix+w.name, "must be a finite non-negative number, got %v", w.value)
	}
	return nil
}

// EffectiveCosts returns Costs or the defaults.
func (g GoTo) EffectiveCosts() GotoCosts {
	if g.Costs == nil {
		return DefaultGotoCosts()
	}
	return *g.Costs
}

// EffectivePenalties returns Penalties or the defaults.
func (g GoTo) EffectivePenalties() GotoPenalties {
	if g.Penalties == nil {
		return DefaultGotoPenalties()
	}
	return *g.Penalties
}
