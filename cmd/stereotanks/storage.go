package main

import (
	"fmt"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/config"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage"
)

func initStorage() error {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, SlogManager, DBLogger)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return err
	}
	if backend == nil {
		Logger.Info("Match recording disabled")
		return nil
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	storageBackend = backend
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return nil
}

func closeStorage() {
	if storageBackend == nil {
		return
	}
	if err := storageBackend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
		return
	}
	if exp, ok := storageBackend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
		Logger.Info("Recording saved", "path", exp.ExportedFilePath())
	}
}
