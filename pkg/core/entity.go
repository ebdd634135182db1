// pkg/core/entity.go
package core

import "fmt"

// OccupantKind is the discriminant of the Occupant sum type.
type OccupantKind uint8

const (
	OccupantWall OccupantKind = iota
	OccupantTank
	OccupantBullet
	OccupantMine
	OccupantLaser
)

func (k OccupantKind) String() string {
	switch k {
	case OccupantWall:
		return "wall"
	case OccupantTank:
		return "tank"
	case OccupantBullet:
		return "bullet"
	case OccupantMine:
		return "mine"
	case OccupantLaser:
		return "laser"
	default:
		return fmt.Sprintf("OccupantKind(%d)", uint8(k))
	}
}

// Occupant is anything placed on a tile. The set is closed: only the types
// in this package implement it.
type Occupant interface {
	Kind() OccupantKind
	Accept(v OccupantVisitor)
	occupant()
}

// OccupantVisitor has one method per occupant kind. Adding a kind adds a
// method here, so every consumer stops compiling until it handles it.
type OccupantVisitor interface {
	VisitWall(w Wall)
	VisitTank(t Tank)
	VisitBullet(b Bullet)
	VisitMine(m Mine)
	VisitLaser(l Laser)
}

// WallKind distinguishes walls bullets stop on from walls they pass through.
type WallKind uint8

const (
	SolidWall      WallKind = 0
	PenetrableWall WallKind = 1
)

func (k WallKind) String() string {
	switch k {
	case SolidWall:
		return "solid"
	case PenetrableWall:
		return "penetrable"
	default:
		return fmt.Sprintf("WallKind(%d)", uint8(k))
	}
}

// Wall blocks movement.
type Wall struct {
	Type WallKind
}

func (Wall) Kind() OccupantKind         { return OccupantWall }
func (w Wall) Accept(v OccupantVisitor) { v.VisitWall(w) }
func (Wall) occupant()                  {}

// BulletKind is the projectile type.
type BulletKind uint8

const (
	BasicBullet   BulletKind = 0
	DoubleBullet  BulletKind = 1
	HealingBullet BulletKind = 2
	StunBullet    BulletKind = 3
)

func (k BulletKind) String() string {
	switch k {
	case BasicBullet:
		return "basic"
	case DoubleBullet:
		return "double"
	case HealingBullet:
		return "healing"
	case StunBullet:
		return "stun"
	default:
		return fmt.Sprintf("BulletKind(%d)", uint8(k))
	}
}

func (k BulletKind) Valid() bool {
	return k <= StunBullet
}

// Bullet keeps its ID across ticks until it leaves the snapshot.
type Bullet struct {
	ID        int
	Type      BulletKind
	Speed     float64
	Direction Direction
}

func (Bullet) Kind() OccupantKind         { return OccupantBullet }
func (b Bullet) Accept(v OccupantVisitor) { v.VisitBullet(b) }
func (Bullet) occupant()                  {}

// LaserOrientation is the axis a laser beam covers.
type LaserOrientation uint8

const (
	Horizontal LaserOrientation = 0
	Vertical   LaserOrientation = 1
)

func (o LaserOrientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("LaserOrientation(%d)", uint8(o))
	}
}

func (o LaserOrientation) Valid() bool {
	return o <= Vertical
}

// Laser occupies every tile along its axis.
type Laser struct {
	ID          int
	Orientation LaserOrientation
}

func (Laser) Kind() OccupantKind         { return OccupantLaser }
func (l Laser) Accept(v OccupantVisitor) { v.VisitLaser(l) }
func (Laser) occupant()                  {}

// Mine is dormant until ExplosionRemainingTicks is set.
type Mine struct {
	ID                      int
	ExplosionRemainingTicks *int
}

func (Mine) Kind() OccupantKind         { return OccupantMine }
func (m Mine) Accept(v OccupantVisitor) { v.VisitMine(m) }
func (Mine) occupant()                  {}

// Armed reports whether the mine has started its explosion countdown.
func (m Mine) Armed() bool {
	return m.ExplosionRemainingTicks != nil
}

func (Tank) Kind() OccupantKind         { return OccupantTank }
func (t Tank) Accept(v OccupantVisitor) { v.VisitTank(t) }
func (Tank) occupant()                  {}

// compile-time checks that the sum type stays closed over these five
var (
	_ Occupant = Wall{}
	_ Occupant = Tank{}
	_ Occupant = Bullet{}
	_ Occupant = Mine{}
	_ Occupant = Laser{}
)
