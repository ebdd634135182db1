// pkg/core/tank.go
package core

// Turret holds orientation and the cooldowns the server chose to reveal.
// A nil cooldown is unknown or not applicable; zero means ready now.
type Turret struct {
	Direction            Direction
	BulletCount          *int
	TicksToBullet        *int
	TicksToDoubleBullet  *int // light only
	TicksToLaser         *int // heavy only
	TicksToHealingBullet *int
	TicksToStunBullet    *int
}

// VisibilityMask is aligned with the grid: mask[y][x] is true where the
// controlled tank has line of sight.
type VisibilityMask [][]bool

// Rows returns the mask height.
func (m VisibilityMask) Rows() int { return len(m) }

// Cols returns the mask width (0 for an empty mask).
func (m VisibilityMask) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// At reports visibility of cell (x, y); out-of-range cells are not visible.
func (m VisibilityMask) At(x, y int) bool {
	if y < 0 || y >= len(m) || x < 0 || x >= len(m[y]) {
		return false
	}
	return m[y][x]
}

// Scope says how much of a tank record the server revealed.
type Scope uint8

const (
	// ScopeRestricted is an enemy or teammate record: only the public fields.
	ScopeRestricted Scope = iota
	// ScopeFull is the controlled tank: health and visibility are present.
	ScopeFull
)

func (s Scope) String() string {
	if s == ScopeFull {
		return "full"
	}
	return "restricted"
}

// Tank is the public record of a tank plus the restricted fields, which are
// nil unless the server sent them. Read restricted fields through Own.
type Tank struct {
	OwnerID   string
	Type      TankKind
	Direction Direction
	Turret    Turret

	Health       *int
	TicksToMine  *int  // heavy only
	TicksToRadar *int  // light only
	IsUsingRadar *bool // light only
	Visibility   VisibilityMask
}

// Scope reports whether the full record is present.
func (t Tank) Scope() Scope {
	if t.Health != nil && t.Visibility != nil {
		return ScopeFull
	}
	return ScopeRestricted
}

// Own returns the controlled-tank view. ok is false for restricted records.
func (t Tank) Own() (OwnTankView, bool) {
	if t.Scope() != ScopeFull {
		return OwnTankView{}, false
	}
	return OwnTankView{Tank: t, Health: *t.Health, Visibility: t.Visibility}, true
}

// OwnTankView is a Tank whose restricted fields are guaranteed present.
type OwnTankView struct {
	Tank       Tank
	Health     int
	Visibility VisibilityMask
}

// MineCooldown is reported for heavy tanks only.
func (v OwnTankView) MineCooldown() (int, bool) {
	return deref(v.Tank.TicksToMine)
}

// RadarCooldown is reported for light tanks only.
func (v OwnTankView) RadarCooldown() (int, bool) {
	return deref(v.Tank.TicksToRadar)
}

// RadarActive is false for heavy tanks.
func (v OwnTankView) RadarActive() bool {
	return v.Tank.IsUsingRadar != nil && *v.Tank.IsUsingRadar
}

// Cooldown returns the ticks until ability a is ready, if the server reported it.
func (t Tank) Cooldown(a AbilityType) (int, bool) {
	switch a {
	case FireBullet:
		return deref(t.Turret.TicksToBullet)
	case FireDoubleBullet:
		return deref(t.Turret.TicksToDoubleBullet)
	case UseLaser:
		return deref(t.Turret.TicksToLaser)
	case FireHealingBullet:
		return deref(t.Turret.TicksToHealingBullet)
	case FireStunBullet:
		return deref(t.Turret.TicksToStunBullet)
	case DropMine:
		return deref(t.TicksToMine)
	case UseRadar:
		return deref(t.TicksToRadar)
	}
	return 0, false
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
