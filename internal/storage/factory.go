// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/config"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/database"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/logging"
	gormstorage "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/gorm"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/memory"
	parquetstorage "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/parquet"
	sqlitestorage "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration. It returns a
// nil Backend when recording is disabled. The backend is not initialized.
func NewBackend(cfg config.StorageConfig, logManager *logging.SlogManager, dbLog zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return memory.New(cfg.Memory), nil
	case "parquet":
		return parquetstorage.New(cfg.Parquet), nil
	case "sqlite":
		return newSqlite(cfg.SQLite, logManager)
	case "postgres":
		mgr := database.NewManager(dbLog)
		if err := mgr.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect database: %w", err)
		}
		if mgr.UsingSqlite {
			// Connect fell back to a throwaway in-memory DB; record to the
			// configured SQLite file instead so the match survives.
			_ = mgr.Close()
			dbLog.Warn().Str("path", cfg.SQLite.Path).Msg("Postgres unavailable, recording to SQLite")
			return newSqlite(cfg.SQLite, logManager)
		}
		return gormstorage.New(gormstorage.Dependencies{DB: mgr.DB, LogManager: logManager}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

func newSqlite(cfg config.SQLiteConfig, logManager *logging.SlogManager) (Backend, error) {
	b, err := sqlitestorage.New(sqlitestorage.Config{
		DumpInterval: cfg.DumpInterval,
		DumpPath:     cfg.Path,
	}, logManager)
	if err != nil {
		return nil, err
	}
	return b, nil
}
