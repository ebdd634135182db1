// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/config"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/google/uuid"
)

var errNoMatch = errors.New("no match started")

// Backend keeps the current match in memory and exports it to JSON
type Backend struct {
	cfg   config.MemoryConfig
	match *core.Match

	ticks    []core.TickRecord
	warnings []core.WarningRecord
	result   *core.GameEnd

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports a match that never received its result, so a dropped
// connection still leaves a file behind.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return nil
	}
	err := b.exportJSON()
	b.match = nil
	return err
}

// StartMatch begins recording a new match, discarding any unfinished one
func (b *Backend) StartMatch(m *core.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	b.match = m
	b.ticks = nil
	b.warnings = nil
	b.result = nil

	return nil
}

// EndMatch stores the result and exports the match
func (b *Backend) EndMatch(end *core.GameEnd) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return errNoMatch
	}
	b.result = end
	err := b.exportJSON()
	b.match = nil
	return err
}

// RecordTick appends a tick to the current match
func (b *Backend) RecordTick(r *core.TickRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return errNoMatch
	}
	b.ticks = append(b.ticks, *r)
	return nil
}

// RecordWarning appends a warning to the current match
func (b *Backend) RecordWarning(w *core.WarningRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return errNoMatch
	}
	b.warnings = append(b.warnings, *w)
	return nil
}

// Ticks returns a copy of the recorded ticks
func (b *Backend) Ticks() []core.TickRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.TickRecord, len(b.ticks))
	copy(out, b.ticks)
	return out
}

// Warnings returns a copy of the recorded warnings
func (b *Backend) Warnings() []core.WarningRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.WarningRecord, len(b.warnings))
	copy(out, b.warnings)
	return out
}

// ExportedFilePath returns the path of the last exported file
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
