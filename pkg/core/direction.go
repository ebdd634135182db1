// pkg/core/direction.go
package core

import "fmt"

// TankKind is fixed when the tank is created.
type TankKind uint8

const (
	Light TankKind = 0
	Heavy TankKind = 1
)

func (k TankKind) String() string {
	switch k {
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	default:
		return fmt.Sprintf("TankKind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known tank kind.
func (k TankKind) Valid() bool {
	return k == Light || k == Heavy
}

// Direction is used for both hull and turret orientation.
type Direction uint8

const (
	Up    Direction = 0
	Right Direction = 1
	Down  Direction = 2
	Left  Direction = 3
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

func (d Direction) Valid() bool {
	return d <= Left
}

// Delta returns the grid step for one tile in direction d.
// Rows grow downward, so Up is dy = -1.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	}
	return 0, 0
}

// RotationDirection is a single rotation step for hull or turret.
type RotationDirection uint8

const (
	RotateLeft  RotationDirection = 0
	RotateRight RotationDirection = 1
	RotateNone  RotationDirection = 2
)

func (r RotationDirection) String() string {
	switch r {
	case RotateLeft:
		return "left"
	case RotateRight:
		return "right"
	case RotateNone:
		return "none"
	default:
		return fmt.Sprintf("RotationDirection(%d)", uint8(r))
	}
}

func (r RotationDirection) Valid() bool {
	return r <= RotateNone
}

// MoveDirection is relative to the hull.
type MoveDirection uint8

const (
	Forward  MoveDirection = 0
	Backward MoveDirection = 1
)

func (m MoveDirection) String() string {
	switch m {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("MoveDirection(%d)", uint8(m))
	}
}

func (m MoveDirection) Valid() bool {
	return m <= Backward
}
