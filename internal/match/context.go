package match

import (
	"log/slog"
	"sync"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

// Context holds the current match and tick
type Context struct {
	mu    sync.RWMutex
	match *core.Match
	tick  int
}

// NewContext creates a Context with no match loaded
func NewContext() *Context {
	return &Context{tick: -1}
}

// GetMatch returns the current match, or nil before lobby data arrives
func (mc *Context) GetMatch() *core.Match {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.match
}

// SetMatch sets the current match and resets the tick
func (mc *Context) SetMatch(m *core.Match) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.match = m
	mc.tick = -1
}

// Tick returns the last processed tick, -1 when none
func (mc *Context) Tick() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.tick
}

// SetTick records the tick being processed
func (mc *Context) SetTick(tick int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.tick = tick
}

// LogAttrs is a logging.ContextProvider.
func (mc *Context) LogAttrs() []slog.Attr {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if mc.match == nil {
		return nil
	}
	attrs := []slog.Attr{slog.String("matchId", mc.match.ID)}
	if mc.tick >= 0 {
		attrs = append(attrs, slog.Int("tick", mc.tick))
	}
	return attrs
}
