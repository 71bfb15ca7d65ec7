package otel

import (
	"context"
	"fmt"

	"github.com/hexfront/tactics/internal/config"
	"github.com/hexfront/tactics/pkg/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Provider hands out meters. When disabled every meter is a no-op; when
// enabled meters come from the globally registered MeterProvider, so an SDK
// installed by the host process receives the measurements.
type Provider struct {
	config config.OTelConfig
}

// New creates a new OTel provider with the given configuration.
func New(cfg config.OTelConfig) *Provider {
	return &Provider{config: cfg}
}

// Meter returns a meter with the given name for creating metrics.
func (p *Provider) Meter(name string) metric.Meter {
	if !p.config.Enabled {
		return noop.Meter{}
	}
	return otel.GetMeterProvider().Meter(name, metric.WithInstrumentationAttributes(
		attribute.String("service.name", p.config.ServiceName),
	))
}

// Enabled returns whether OTel is enabled
func (p *Provider) Enabled() bool {
	return p.config.Enabled
}

// Instruments are the battle counters and histograms.
type Instruments struct {
	moves       metric.Int64Counter
	movement    metric.Int64Histogram
	engagements metric.Int64Counter
	captures    metric.Int64Counter
	damage      metric.Int64Histogram
}

// NewInstruments registers the battle instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		in  Instruments
		err error
	)
	if in.moves, err = meter.Int64Counter("skirmish.moves",
		metric.WithDescription("Completed non-combat moves")); err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}
	if in.movement, err = meter.Int64Histogram("skirmish.move.cost",
		metric.WithDescription("Movement points spent per move"),
		metric.WithUnit("{mp}")); err != nil {
		return nil, fmt.Errorf("failed to create move cost histogram: %w", err)
	}
	if in.engagements, err = meter.Int64Counter("skirmish.engagements",
		metric.WithDescription("Resolved engagements")); err != nil {
		return nil, fmt.Errorf("failed to create engagements counter: %w", err)
	}
	if in.captures, err = meter.Int64Counter("skirmish.captures",
		metric.WithDescription("Engagements that killed the defender")); err != nil {
		return nil, fmt.Errorf("failed to create captures counter: %w", err)
	}
	if in.damage, err = meter.Int64Histogram("skirmish.damage",
		metric.WithDescription("Damage dealt per engagement side"),
		metric.WithUnit("{hp}")); err != nil {
		return nil, fmt.Errorf("failed to create damage histogram: %w", err)
	}
	return &in, nil
}

// RecordMove counts a move.
func (in *Instruments) RecordMove(ctx context.Context, e core.MoveEvent) {
	attrs := metric.WithAttributes(
		attribute.String("owner", string(e.Owner)),
		attribute.Bool("exhausted", e.Exhausted),
	)
	in.moves.Add(ctx, 1, attrs)
	in.movement.Record(ctx, int64(e.Deducted), attrs)
}

// RecordCombat counts an engagement and the damage on both sides.
func (in *Instruments) RecordCombat(ctx context.Context, e core.CombatEvent) {
	attrs := metric.WithAttributes(
		attribute.String("attacker_owner", string(e.Attacker.Owner)),
		attribute.Bool("ranged", e.Ranged),
		attribute.String("verdict", e.Verdict),
	)
	in.engagements.Add(ctx, 1, attrs)
	if e.Captured {
		in.captures.Add(ctx, 1, attrs)
	}
	in.damage.Record(ctx, int64(e.Defender.Damage), metric.WithAttributes(attribute.String("side", "defender")))
	in.damage.Record(ctx, int64(e.Attacker.Damage), metric.WithAttributes(attribute.String("side", "attacker")))
}
