// Package gormstorage implements the storage.Backend interface using GORM
// (SQLite or PostgreSQL) with internal queues and a background writer.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hexfront/tactics/internal/database"
	"github.com/hexfront/tactics/internal/model"
	"github.com/hexfront/tactics/internal/model/convert"
	"github.com/hexfront/tactics/internal/queue"
	"github.com/hexfront/tactics/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultFlushInterval is how often queued rows are written.
const DefaultFlushInterval = 2 * time.Second

// ErrNoMatch is returned when events arrive outside a started match.
var ErrNoMatch = errors.New("no match in progress")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        zerolog.Logger
	BatchSize     int
	FlushInterval time.Duration
	// DumpPath, when set, receives a copy of the database on Close.
	DumpPath string
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Moves       *queue.Queue[model.Move]
	Engagements *queue.Queue[model.Engagement]
}

func newQueues() *queues {
	return &queues{
		Moves:       queue.New[model.Move](),
		Engagements: queue.New[model.Engagement](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	queues   *queues
	matchID  atomic.Uint64
	maxTurn  atomic.Int64
	stopChan chan struct{}
	done     chan struct{}
	flushMu  sync.Mutex
	stop     sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = 500
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	b.startDBWriter()
	return nil
}

// Close stops the writer, flushes what is left and dumps the database when
// a dump path is configured.
func (b *Backend) Close() error {
	b.stop.Do(func() {
		if b.stopChan != nil {
			close(b.stopChan)
			<-b.done
		}
	})

	err := b.Flush()
	if b.deps.DumpPath != "" {
		if dumpErr := database.DumpMemoryDBToDisk(b.deps.DB, b.deps.DumpPath); dumpErr != nil {
			err = errors.Join(err, dumpErr)
		} else {
			b.deps.Logger.Info().Str("path", b.deps.DumpPath).Msg("Journal dumped to disk")
		}
	}
	return err
}

// StartMatch writes any pending events, then inserts the match and assigns
// its ID.
func (b *Backend) StartMatch(match *core.Match) error {
	if err := b.Flush(); err != nil {
		return err
	}

	rec := convert.CoreToMatch(*match)
	if err := b.deps.DB.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to insert new match: %w", err)
	}
	match.ID = rec.ID
	b.matchID.Store(uint64(rec.ID))
	b.maxTurn.Store(0)

	b.deps.Logger.Info().Uint("matchId", rec.ID).Str("name", rec.Name).Msg("Match started")
	return nil
}

// EndMatch flushes the queues and stamps the match end time and turn count.
func (b *Backend) EndMatch() error {
	id := uint(b.matchID.Load())
	if id == 0 {
		return ErrNoMatch
	}
	if err := b.Flush(); err != nil {
		return err
	}

	err := b.deps.DB.Model(&model.Match{}).Where("id = ?", id).Updates(map[string]any{
		"end_time": time.Now(),
		"turns":    b.maxTurn.Load(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to close match %d: %w", id, err)
	}
	b.matchID.Store(0)
	b.deps.Logger.Info().Uint("matchId", id).Msg("Match ended")
	return nil
}

// RecordMove converts and queues a move.
func (b *Backend) RecordMove(e *core.MoveEvent) error {
	id := b.matchID.Load()
	if id == 0 {
		return ErrNoMatch
	}
	rec, err := convert.CoreToMove(*e)
	if err != nil {
		return fmt.Errorf("failed to convert move: %w", err)
	}
	rec.MatchID = uint(id)
	b.queues.Moves.Push(rec)
	b.noteTurn(e.Turn)
	return nil
}

// RecordCombat converts and queues an engagement.
func (b *Backend) RecordCombat(e *core.CombatEvent) error {
	id := b.matchID.Load()
	if id == 0 {
		return ErrNoMatch
	}
	rec, err := convert.CoreToEngagement(*e)
	if err != nil {
		return fmt.Errorf("failed to convert engagement: %w", err)
	}
	rec.MatchID = uint(id)
	b.queues.Engagements.Push(rec)
	b.noteTurn(e.Turn)
	return nil
}

func (b *Backend) noteTurn(turn int) {
	for {
		cur := b.maxTurn.Load()
		if int64(turn) <= cur || b.maxTurn.CompareAndSwap(cur, int64(turn)) {
			return
		}
	}
}

// Pending returns the number of queued rows not yet written.
func (b *Backend) Pending() int {
	return b.queues.Moves.Len() + b.queues.Engagements.Len()
}

// Flush writes every queued row.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	return errors.Join(
		writeQueue(b.deps.DB, b.queues.Moves, "moves", b.deps.BatchSize),
		writeQueue(b.deps.DB, b.queues.Engagements, "engagements", b.deps.BatchSize),
	)
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed items go back to the front of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, batchSize int) error {
	if q.Empty() {
		return nil
	}

	items := q.Drain(0)
	tx := db.Begin()
	if tx.Error != nil {
		q.Requeue(items...)
		return fmt.Errorf("failed to begin %s transaction: %w", name, tx.Error)
	}
	if err := tx.CreateInBatches(&items, batchSize).Error; err != nil {
		tx.Rollback()
		q.Requeue(items...)
		return fmt.Errorf("error creating %s: %w", name, err)
	}
	if err := tx.Commit().Error; err != nil {
		q.Requeue(items...)
		return fmt.Errorf("error committing %s: %w", name, err)
	}
	return nil
}

// startDBWriter starts the background goroutine that periodically drains
// queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		defer close(b.done)
		ticker := time.NewTicker(b.deps.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				start := time.Now()
				pending := b.Pending()
				if err := b.Flush(); err != nil {
					b.deps.Logger.Error().Err(err).Msg("DB writer failed, rows requeued")
					continue
				}
				if pending > 0 {
					b.deps.Logger.Debug().Int("rows", pending).Dur("duration", time.Since(start)).Msg("Journal flushed")
				}
			}
		}
	}()
}
