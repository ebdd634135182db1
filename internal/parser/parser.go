package parser

import (
	"fmt"
	"log/slog"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

// Parser provides pure packet payload -> core type conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

func parseTankKind(path string, v int) (core.TankKind, error) {
	k := core.TankKind(v)
	if v < 0 || !k.Valid() {
		return 0, &core.DecodeError{Path: path, Reason: fmt.Sprintf("unknown tank type %d", v)}
	}
	return k, nil
}

func parseDirection(path string, v int) (core.Direction, error) {
	d := core.Direction(v)
	if v < 0 || !d.Valid() {
		return 0, &core.DecodeError{Path: path, Reason: fmt.Sprintf("unknown direction %d", v)}
	}
	return d, nil
}

// parseName reads a single-character zone name. Absent, empty and "?" all
// mean "no zone".
func parseName(path string, s *string) (byte, error) {
	if s == nil || *s == "" {
		return core.NoZone, nil
	}
	if len(*s) != 1 {
		return 0, &core.DecodeError{Path: path, Reason: fmt.Sprintf("zone name %q is not a single character", *s)}
	}
	return (*s)[0], nil
}
