// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	v1 "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/memory/export/v1"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

// exportJSON writes the match data to a JSON file. Callers hold b.mu.
func (b *Backend) exportJSON() error {
	export := v1.Build(&v1.MatchData{
		Match:    b.match,
		Ticks:    b.ticks,
		Warnings: b.warnings,
		Result:   b.result,
	})

	outputPath := filepath.Join(b.cfg.OutputDir, exportFileName(b.match, b.cfg.CompressOutput))

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func exportFileName(m *core.Match, compress bool) string {
	filename := m.FileStem() + ".json"
	if compress {
		filename += ".gz"
	}
	return filename
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
