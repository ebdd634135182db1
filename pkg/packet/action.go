package packet

import (
	"fmt"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

// Outbound payloads. Every tick response echoes the game state id it
// answers so the server can match it to the right tick.

// RotationPayload leaves a part unrotated when its field is null.
type RotationPayload struct {
	GameStateID    string `json:"gameStateId"`
	TankRotation   *int   `json:"tankRotation"`
	TurretRotation *int   `json:"turretRotation"`
}

type MovementPayload struct {
	GameStateID string `json:"gameStateId"`
	Direction   int    `json:"direction"`
}

type AbilityUsePayload struct {
	GameStateID string `json:"gameStateId"`
	AbilityType int    `json:"abilityType"`
}

// TickPayload is shared by captureZone and pass.
type TickPayload struct {
	GameStateID string `json:"gameStateId"`
}

type GotoCostsPayload struct {
	Forward  float64 `json:"forward"`
	Backward float64 `json:"backward"`
	Rotate   float64 `json:"rotate"`
}

type PerTilePenaltyPayload struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Penalty float64 `json:"penalty"`
}

type GotoPenaltiesPayload struct {
	Blindly float64                 `json:"blindly"`
	Bullet  float64                 `json:"bullet"`
	Mine    float64                 `json:"mine"`
	Laser   float64                 `json:"laser"`
	PerTile []PerTilePenaltyPayload `json:"perTile,omitempty"`
}

// GoToPayload omits costs and penalties to let the server use its defaults.
type GoToPayload struct {
	GameStateID    string                `json:"gameStateId"`
	X              int                   `json:"x"`
	Y              int                   `json:"y"`
	TurretRotation *int                  `json:"turretRotation,omitempty"`
	Costs          *GotoCostsPayload     `json:"costs,omitempty"`
	Penalties      *GotoPenaltiesPayload `json:"penalties,omitempty"`
}

// EncodeAction turns the tick's action into its response envelope.
func EncodeAction(gameStateID string, a core.Action) (Envelope, error) {
	switch act := a.(type) {
	case core.Rotate:
		return New(TypeRotation, RotationPayload{
			GameStateID:    gameStateID,
			TankRotation:   rotation(act.Tank),
			TurretRotation: rotation(act.Turret),
		})
	case core.Move:
		return New(TypeMovement, MovementPayload{GameStateID: gameStateID, Direction: int(act.Direction)})
	case core.AbilityUse:
		return New(TypeAbilityUse, AbilityUsePayload{GameStateID: gameStateID, AbilityType: int(act.Ability)})
	case core.CaptureZone:
		return New(TypeCaptureZone, TickPayload{GameStateID: gameStateID})
	case core.Wait:
		return New(TypePass, TickPayload{GameStateID: gameStateID})
	case core.GoTo:
		return New(TypeGoTo, goToPayload(gameStateID, act))
	case nil:
		return Envelope{}, fmt.Errorf("encode action: no action")
	default:
		return Envelope{}, fmt.Errorf("encode action: unsupported %T", a)
	}
}

func rotation(r core.RotationDirection) *int {
	if r == core.RotateNone {
		return nil
	}
	v := int(r)
	return &v
}

func goToPayload(gameStateID string, g core.GoTo) GoToPayload {
	p := GoToPayload{GameStateID: gameStateID, X: g.X, Y: g.Y}
	// An explicit none pins the turret; only a nil constraint is omitted.
	if g.TurretRotation != nil {
		v := int(*g.TurretRotation)
		p.TurretRotation = &v
	}
	if c := g.Costs; c != nil {
		p.Costs = &GotoCostsPayload{Forward: c.Forward, Backward: c.Backward, Rotate: c.Rotate}
	}
	if pen := g.Penalties; pen != nil {
		p.Penalties = &GotoPenaltiesPayload{
			Blindly: pen.Blindly,
			Bullet:  pen.Bullet,
			Mine:    pen.Mine,
			Laser:   pen.Laser,
		}
		for _, t := range pen.PerTile {
			p.Penalties.PerTile = append(p.Penalties.PerTile, PerTilePenaltyPayload{X: t.X, Y: t.Y, Penalty: t.Penalty})
		}
	}
	return p
}

// Control packets with no tick context.

func Pong() Envelope                    { return Envelope{Type: TypePong} }
func ReadyToReceiveGameState() Envelope { return Envelope{Type: TypeReadyToReceiveGameState} }
func GameStatusRequest() Envelope       { return Envelope{Type: TypeGameStatusRequest} }
func LobbyDataRequest() Envelope        { return Envelope{Type: TypeLobbyDataRequest} }
