// Package parquetstorage records a match as columnar tick and warning files
// for offline analysis. Rows are buffered in memory and written once per
// match through a temp file that is renamed into place.
package parquetstorage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/config"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const (
	tickSchema    = "stereotanks_tick_v1"
	warningSchema = "stereotanks_warning_v1"
)

var errNoMatch = errors.New("no match started")

// TickRow is one processed snapshot.
type TickRow struct {
	MatchID        string `parquet:"match_id,dict"`
	Tick           int32  `parquet:"tick"`
	TimeUs         int64  `parquet:"time_us"`
	GameStateID    string `parquet:"game_state_id"`
	Action         string `parquet:"action,dict"`
	ActionPayload  []byte `parquet:"action_payload,optional"`
	TankFound      bool   `parquet:"tank_found"`
	TankX          int32  `parquet:"tank_x"`
	TankY          int32  `parquet:"tank_y"`
	Health         *int32 `parquet:"health,optional"`
	Zone           string `parquet:"zone,dict"`
	DecisionTimeUs int64  `parquet:"decision_time_us"`
	Skipped        bool   `parquet:"skipped"`
}

// WarningRow is one server warning.
type WarningRow struct {
	MatchID string `parquet:"match_id,dict"`
	Tick    int32  `parquet:"tick"`
	TimeUs  int64  `parquet:"time_us"`
	Kind    string `parquet:"kind,dict"`
	Message string `parquet:"message"`
}

// Backend buffers rows for the current match.
type Backend struct {
	cfg config.ParquetConfig

	mu       sync.Mutex
	match    *core.Match
	ticks    []TickRow
	warnings []WarningRow

	lastExportPath string
}

// New creates a parquet backend writing into cfg.OutputDir.
func New(cfg config.ParquetConfig) *Backend {
	return &Backend{cfg: cfg}
}

func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// Close writes a match that never ended.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return nil
	}
	err := b.write(nil)
	b.match = nil
	return err
}

func (b *Backend) StartMatch(m *core.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	b.match = m
	b.ticks = nil
	b.warnings = nil
	return nil
}

func (b *Backend) EndMatch(end *core.GameEnd) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return errNoMatch
	}
	err := b.write(end)
	b.match = nil
	return err
}

func (b *Backend) RecordTick(r *core.TickRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return errNoMatch
	}

	row := TickRow{
		MatchID:        b.match.ID,
		Tick:           int32(r.Tick),
		TimeUs:         r.Time.UnixMicro(),
		GameStateID:    r.GameStateID,
		TankFound:      r.TankFound,
		TankX:          int32(r.TankX),
		TankY:          int32(r.TankY),
		DecisionTimeUs: r.DecisionTime.Microseconds(),
		Skipped:        r.Skipped,
	}
	if r.Health != nil {
		h := int32(*r.Health)
		row.Health = &h
	}
	if r.Zone != nil {
		row.Zone = string(*r.Zone)
	}
	if r.Action != nil {
		env, err := packet.EncodeAction(r.GameStateID, r.Action)
		if err != nil {
			return fmt.Errorf("encode action: %w", err)
		}
		row.Action = string(env.Type)
		row.ActionPayload = env.Payload
	}

	b.ticks = append(b.ticks, row)
	return nil
}

func (b *Backend) RecordWarning(w *core.WarningRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return errNoMatch
	}

	row := WarningRow{
		MatchID: b.match.ID,
		Tick:    int32(w.Tick),
		TimeUs:  w.Time.UnixMicro(),
		Kind:    w.Warning.Kind.String(),
	}
	if w.Warning.Message != nil {
		row.Message = *w.Warning.Message
	}
	b.warnings = append(b.warnings, row)
	return nil
}

// ExportedFilePath returns the tick file of the last written match.
func (b *Backend) ExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastExportPath
}

// WarningsPath is the warnings file written next to a tick file.
func WarningsPath(tickPath string) string {
	return tickPath[:len(tickPath)-len(".parquet")] + ".warnings.parquet"
}

// write flushes the buffered match. Callers hold b.mu.
func (b *Backend) write(end *core.GameEnd) error {
	meta := []parquet.WriterOption{
		parquet.KeyValueMetadata("match_id", b.match.ID),
		parquet.KeyValueMetadata("match_name", b.match.Name()),
		parquet.KeyValueMetadata("player_id", b.match.Lobby.PlayerID),
		parquet.KeyValueMetadata("complete", strconv.FormatBool(end != nil)),
	}
	if end != nil {
		if w, ok := end.Winner(); ok {
			meta = append(meta, parquet.KeyValueMetadata("winner", w.Name))
		}
	}

	tickPath := filepath.Join(b.cfg.OutputDir, b.match.FileStem()+".parquet")
	if err := writeAtomic(tickPath, b.ticks, tickSchema, meta...); err != nil {
		return err
	}
	if len(b.warnings) > 0 {
		if err := writeAtomic(WarningsPath(tickPath), b.warnings, warningSchema, meta...); err != nil {
			return err
		}
	}

	b.lastExportPath = tickPath
	return nil
}

func writeAtomic[T any](outPath string, rows []T, schema string, opts ...parquet.WriterOption) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	opts = append(opts,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schema),
	)
	if err := parquet.WriteFile(tmpPath, rows, opts...); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}
