// Package policy holds the pluggable per-tick decision strategies.
package policy

import (
	"fmt"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/perception"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

// Policy turns one snapshot into the tick's single action. Implementations
// must return a non-nil action, including when the tank was not found.
type Policy interface {
	Decide(s core.Snapshot, me perception.Result) core.Action
}

// Func adapts a plain function to Policy.
type Func func(s core.Snapshot, me perception.Result) core.Action

func (f Func) Decide(s core.Snapshot, me perception.Result) core.Action {
	return f(s, me)
}

// Passive always waits.
type Passive struct{}

func (Passive) Decide(core.Snapshot, perception.Result) core.Action {
	return core.Wait{}
}

// Names accepted by New.
const (
	NameRandom     = "random"
	NamePassive    = "passive"
	NameZoneSeeker = "zoneSeeker"
)

// New builds the policy registered under name. seed only affects Random.
func New(name string, seed uint64) (Policy, error) {
	switch name {
	case NameRandom, "":
		return NewRandom(seed), nil
	case NamePassive:
		return Passive{}, nil
	case NameZoneSeeker:
		return NewZoneSeeker(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

var (
	_ Policy = Func(nil)
	_ Policy = Passive{}
	_ Policy = (*Random)(nil)
	_ Policy = (*ZoneSeeker)(nil)
)
