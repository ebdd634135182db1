package policy

import (
	"math/rand/v2"
	"sync"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/perception"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

// Branch weights for Random, in percent: rotate, move, ability, wait.
var randomWeights = [4]int{25, 30, 35, 10}

// Random flips a weighted coin for the action family, then makes
// a uniform pick inside it. Half of the wait branch tries a capture instead.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom seeds a deterministic generator; equal seeds give equal games.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) Decide(s core.Snapshot, me perception.Result) core.Action {
	if !me.Found {
		return core.Wait{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.branch() {
	case 0:
		return core.Rotate{
			Tank:   core.RotationDirection(r.rng.IntN(3)),
			Turret: core.RotationDirection(r.rng.IntN(3)),
		}
	case 1:
		return core.Move{Direction: core.MoveDirection(r.rng.IntN(2))}
	case 2:
		abilities := core.AvailableAbilities(me.Tank.Type)
		if len(abilities) == 0 {
			return core.Wait{}
		}
		return core.AbilityUse{Ability: abilities[r.rng.IntN(len(abilities))]}
	default:
		if r.rng.IntN(2) == 1 {
			return core.CaptureZone{}
		}
		return core.Wait{}
	}
}

func (r *Random) branch() int {
	total := 0
	for _, w := range randomWeights {
		total += w
	}
	n := r.rng.IntN(total)
	for i, w := range randomWeights {
		if n < w {
			return i
		}
		n -= w
	}
	return len(randomWeights) - 1
}
