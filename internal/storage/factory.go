// internal/storage/factory.go
package storage

import (
	"errors"
	"fmt"

	"github.com/hexfront/tactics/internal/config"
	gormstorage "github.com/hexfront/tactics/internal/storage/gorm"
	"github.com/hexfront/tactics/internal/storage/memory"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrNoDatabase is returned when a database backend is requested without a
// connection.
var ErrNoDatabase = errors.New("database backend requires a connection")

// Dependencies holds what the database backends need beyond configuration.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
	// DumpPath, when set, receives a VACUUM INTO copy of the database on close.
	DumpPath string
}

// NewBackend creates a journal backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "postgres", "sqlite":
		if deps.DB == nil {
			return nil, fmt.Errorf("%s: %w", cfg.Type, ErrNoDatabase)
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:        deps.DB,
			Logger:    deps.Logger,
			BatchSize: cfg.BatchSize,
			DumpPath:  deps.DumpPath,
		}), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
