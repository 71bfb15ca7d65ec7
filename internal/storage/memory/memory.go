// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/hexfront/tactics/internal/config"
	"github.com/hexfront/tactics/pkg/core"
)

// ErrNoMatch is returned when events arrive outside a started match.
var ErrNoMatch = errors.New("no match in progress")

// Backend keeps the match journal in memory and exports it to JSON
type Backend struct {
	cfg   config.MemoryConfig
	match *core.Match
	ended time.Time
	turns int

	moves   []core.MoveEvent
	combats []core.CombatEvent

	idCounter      uint
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

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMatch begins recording a new match and assigns its ID
func (b *Backend) StartMatch(match *core.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	match.ID = b.idCounter
	m := *match
	b.match = &m
	b.ended = time.Time{}
	b.turns = 0
	b.moves = nil
	b.combats = nil
	return nil
}

// EndMatch finalizes and exports the match
func (b *Backend) EndMatch() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return ErrNoMatch
	}
	b.ended = time.Now()
	if err := b.exportJSON(); err != nil {
		return err
	}
	b.match = nil
	return nil
}

// RecordMove stores a copy of the move
func (b *Backend) RecordMove(e *core.MoveEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return ErrNoMatch
	}
	ev := *e
	ev.Path = slices.Clone(e.Path)
	b.moves = append(b.moves, ev)
	b.turns = max(b.turns, e.Turn)
	return nil
}

// RecordCombat stores a copy of the engagement
func (b *Backend) RecordCombat(e *core.CombatEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return ErrNoMatch
	}
	ev := *e
	ev.Attacker.Modifiers = slices.Clone(e.Attacker.Modifiers)
	ev.Defender.Modifiers = slices.Clone(e.Defender.Modifiers)
	b.combats = append(b.combats, ev)
	b.turns = max(b.turns, e.Turn)
	return nil
}

// Moves returns the recorded moves in order
func (b *Backend) Moves() []core.MoveEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.moves)
}

// Combats returns the recorded engagements in order
func (b *Backend) Combats() []core.CombatEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.combats)
}

// ExportedFilePath returns the file written by the last EndMatch
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
