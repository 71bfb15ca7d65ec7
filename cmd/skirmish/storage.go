package main

import (
	"fmt"

	"github.com/hexfront/tactics/internal/config"
	"github.com/hexfront/tactics/internal/database"
	"github.com/hexfront/tactics/internal/logging"
	"github.com/hexfront/tactics/internal/storage"
)

// journal is the opened storage backend and the database behind it, if any.
type journal struct {
	backend storage.Backend
	db      *database.Manager
}

func openJournal(logs *logging.Manager) (*journal, error) {
	storageCfg := config.GetStorageConfig()
	deps := storage.Dependencies{Logger: logs.Component("storage")}
	j := &journal{}

	if storageCfg.Type == "postgres" || storageCfg.Type == "sqlite" {
		j.db = database.NewManager(logs.Component("database"))
		if err := j.db.Connect(storageCfg, config.GetDBConfig()); err != nil {
			return nil, fmt.Errorf("failed to connect journal database: %w", err)
		}
		deps.DB = j.db.DB
		if j.db.InMemory {
			deps.DumpPath = storageCfg.SQLite.DumpPath
		}
	}

	backend, err := storage.NewBackend(storageCfg, deps)
	if err != nil {
		j.closeDB()
		return nil, err
	}
	if err := backend.Init(); err != nil {
		j.closeDB()
		return nil, fmt.Errorf("failed to initialize %s journal: %w", storageCfg.Type, err)
	}
	j.backend = backend
	return j, nil
}

// close ends the backend first so buffered rows reach the database.
func (j *journal) close() error {
	err := j.backend.Close()
	if dbErr := j.closeDB(); dbErr != nil && err == nil {
		err = dbErr
	}
	return err
}

func (j *journal) closeDB() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// exportPath returns the file the match was exported to, if the backend
// writes one.
func (j *journal) exportPath() string {
	if e, ok := j.backend.(storage.Exporter); ok {
		return e.ExportedFilePath()
	}
	return ""
}
