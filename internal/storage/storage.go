// internal/storage/storage.go
package storage

import "github.com/hexfront/tactics/pkg/core"

// Backend is the interface all journal implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Match management (StartMatch assigns the match ID)
	StartMatch(match *core.Match) error
	EndMatch() error

	// Event recording
	RecordMove(e *core.MoveEvent) error
	RecordCombat(e *core.CombatEvent) error
}

// Exporter is an optional interface for backends that write the match to a
// file when it ends.
type Exporter interface {
	ExportedFilePath() string
}
