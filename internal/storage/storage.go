// internal/storage/storage.go
package storage

import "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"

// Backend is the interface all match recorders must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Match management (StartMatch assigns an ID to the passed match when empty)
	StartMatch(m *core.Match) error
	EndMatch(end *core.GameEnd) error

	// Per-tick recording
	RecordTick(r *core.TickRecord) error
	RecordWarning(w *core.WarningRecord) error
}

// Exporter is an optional interface for backends that write a file per match.
type Exporter interface {
	ExportedFilePath() string
}
