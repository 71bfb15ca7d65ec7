package battle

import (
	"context"
	"time"

	"github.com/hexfront/tactics/internal/combat"
	"github.com/hexfront/tactics/pkg/core"
	"github.com/rs/zerolog"
)

// Recorder journals completed actions. Every storage.Backend is one.
type Recorder interface {
	RecordMove(e *core.MoveEvent) error
	RecordCombat(e *core.CombatEvent) error
}

// Stats receives per-match statistics points, as influx.Manager does.
type Stats interface {
	RecordMove(match string, e core.MoveEvent) error
	RecordCombat(match string, e core.CombatEvent) error
}

// Metrics counts actions, as otel.Instruments does.
type Metrics interface {
	RecordMove(ctx context.Context, e core.MoveEvent)
	RecordCombat(ctx context.Context, e core.CombatEvent)
}

// Option configures a Battle.
type Option func(*Battle)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Battle) { b.log = log }
}

// WithRecorder journals every move and engagement.
func WithRecorder(r Recorder) Option {
	return func(b *Battle) { b.recorder = r }
}

// WithStats writes statistics points tagged with the match name.
func WithStats(s Stats, match string) Option {
	return func(b *Battle) {
		b.stats = s
		b.match = match
	}
}

// WithMetrics records counters and histograms.
func WithMetrics(m Metrics) Option {
	return func(b *Battle) { b.metrics = m }
}

// WithRules overrides the combat rules.
func WithRules(r combat.Rules) Option {
	return func(b *Battle) { b.rules = r }
}

// WithRand sets the dice source.
func WithRand(rng combat.Rand) Option {
	return func(b *Battle) { b.rng = rng }
}

// WithMovementPoints sets the points every unit gets on a new turn.
func WithMovementPoints(mp int) Option {
	return func(b *Battle) {
		if mp > 0 {
			b.movementPoints = mp
		}
	}
}

// WithMaxDepth caps the reachability search.
func WithMaxDepth(n int) Option {
	return func(b *Battle) { b.maxDepth = n }
}

// WithClock sets the time source of recorded events.
func WithClock(now func() time.Time) Option {
	return func(b *Battle) { b.now = now }
}
