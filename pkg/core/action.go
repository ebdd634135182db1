// pkg/core/action.go
package core

import "fmt"

// AbilityType is the closed set of abilities a tank may use.
type AbilityType uint8

const (
	FireBullet        AbilityType = 0
	UseLaser          AbilityType = 1
	FireDoubleBullet  AbilityType = 2
	UseRadar          AbilityType = 3
	DropMine          AbilityType = 4
	FireHealingBullet AbilityType = 5
	FireStunBullet    AbilityType = 6
)

var abilityNames = map[AbilityType]string{
	FireBullet:        "fireBullet",
	UseLaser:          "useLaser",
	FireDoubleBullet:  "fireDoubleBullet",
	UseRadar:          "useRadar",
	DropMine:          "dropMine",
	FireHealingBullet: "fireHealingBullet",
	FireStunBullet:    "fireStunBullet",
}

func (a AbilityType) String() string {
	if name, ok := abilityNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AbilityType(%d)", uint8(a))
}

func (a AbilityType) Valid() bool {
	_, ok := abilityNames[a]
	return ok
}

// ParseAbilityType maps a wire name back to its ability.
func ParseAbilityType(name string) (AbilityType, error) {
	for a, n := range abilityNames {
		if n == name {
			return a, nil
		}
	}
	return 0, decodeErrorf("abilityType", "unknown ability %q", name)
}

var (
	commonAbilities = []AbilityType{FireBullet, FireHealingBullet, FireStunBullet}
	heavyAbilities  = []AbilityType{UseLaser, DropMine}
	lightAbilities  = []AbilityType{FireDoubleBullet, UseRadar}
)

// AvailableAbilities lists the abilities tanks of kind may use, in a fixed
// order. The kind-specific parts of Light and Heavy never overlap.
func AvailableAbilities(kind TankKind) []AbilityType {
	var specific []AbilityType
	switch kind {
	case Heavy:
		specific = heavyAbilities
	case Light:
		specific = lightAbilities
	default:
		return nil
	}
	out := make([]AbilityType, 0, len(commonAbilities)+len(specific))
	out = append(out, FireBullet)
	out = append(out, specific...)
	out = append(out, FireHealingBullet, FireStunBullet)
	return out
}

// CanUse reports whether kind may use ability a.
func CanUse(kind TankKind, a AbilityType) bool {
	for _, avail := range AvailableAbilities(kind) {
		if avail == a {
			return true
		}
	}
	return false
}

// CheckAbility returns a *ContractViolation when kind cannot use a.
func CheckAbility(kind TankKind, a AbilityType) error {
	if !CanUse(kind, a) {
		return &ContractViolation{Kind: kind, Ability: a}
	}
	return nil
}

// ActionKind is the discriminant of the Action sum type.
type ActionKind uint8

const (
	ActionRotate ActionKind = iota
	ActionMove
	ActionAbilityUse
	ActionCaptureZone
	ActionWait
	ActionGoTo
)

func (k ActionKind) String() string {
	switch k {
	case ActionRotate:
		return "rotate"
	case ActionMove:
		return "move"
	case ActionAbilityUse:
		return "abilityUse"
	case ActionCaptureZone:
		return "captureZone"
	case ActionWait:
		return "wait"
	case ActionGoTo:
		return "goTo"
	default:
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
}

// Action is the single response produced per tick.
type Action interface {
	ActionKind() ActionKind
	action()
}

// Rotate turns hull and turret independently; RotateNone leaves one as is.
type Rotate struct {
	Tank   RotationDirection
	Turret RotationDirection
}

// Move drives one tile along the hull direction.
type Move struct {
	Direction MoveDirection
}

// AbilityUse is not checked against the tank kind; see CheckAbility.
type AbilityUse struct {
	Ability AbilityType
}

// CaptureZone targets the zone under the controlled tank.
type CaptureZone struct{}

// Wait does nothing this tick.
type Wait struct{}

func (Rotate) ActionKind() ActionKind      { return ActionRotate }
func (Move) ActionKind() ActionKind        { return ActionMove }
func (AbilityUse) ActionKind() ActionKind  { return ActionAbilityUse }
func (CaptureZone) ActionKind() ActionKind { return ActionCaptureZone }
func (Wait) ActionKind() ActionKind        { return ActionWait }
func (GoTo) ActionKind() ActionKind        { return ActionGoTo }

func (Rotate) action()      {}
func (Move) action()        {}
func (AbilityUse) action()  {}
func (CaptureZone) action() {}
func (Wait) action()        {}
func (GoTo) action()        {}

// ValidateFor checks an action against the controlled tank's kind: enum
// values must be known and abilities must be available to kind.
func ValidateFor(kind TankKind, a Action) error {
	switch act := a.(type) {
	case nil:
		return decodeErrorf("action", "no action")
	case Rotate:
		if !act.Tank.Valid() || !act.Turret.Valid() {
			return decodeErrorf("rotation", "invalid rotation %d/%d", act.Tank, act.Turret)
		}
	case Move:
		if !act.Direction.Valid() {
			return decodeErrorf("movement.direction", "invalid direction %d", act.Direction)
		}
	case AbilityUse:
		if !act.Ability.Valid() {
			return decodeErrorf("abilityType", "invalid ability %d", act.Ability)
		}
		return CheckAbility(kind, act.Ability)
	}
	return nil
}
