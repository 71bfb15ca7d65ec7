// Package battle drives a skirmish: it moves units along resolved routes,
// stages and settles engagements, advances turns and reports every action
// to the journal, statistics and metrics sinks.
package battle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hexfront/tactics/internal/combat"
	"github.com/hexfront/tactics/internal/reach"
	"github.com/hexfront/tactics/internal/terrain"
	"github.com/hexfront/tactics/internal/units"
	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
	"github.com/rs/zerolog"
)

// DefaultMovementPoints is the per-turn allowance when none is configured.
const DefaultMovementPoints = 2

var (
	// ErrUnknownUnit is returned for ids that are not on the battlefield.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrUnreachable is returned when no route leads to the destination.
	ErrUnreachable = errors.New("destination not reachable")
	// ErrExhausted is returned when the unit has no movement left.
	ErrExhausted = errors.New("unit has no movement left")
	// ErrStalePending is returned when a pending engagement no longer
	// matches the battlefield.
	ErrStalePending = errors.New("pending engagement is stale")
)

// Pending is a previewed attack waiting for Confirm or Withdraw.
type Pending struct {
	Route      reach.Route
	Engagement *combat.Engagement

	attacker core.UnitID
	defender core.UnitID
	turn     int
}

// Attacker returns the attacking unit.
func (p *Pending) Attacker() core.UnitID { return p.attacker }

// Defender returns the defending unit.
func (p *Pending) Defender() core.UnitID { return p.defender }

// Result is a settled engagement.
type Result struct {
	Outcome combat.Outcome
	Event   core.CombatEvent
}

// Battle holds the live state of one skirmish.
type Battle struct {
	mu sync.Mutex

	terrain  *terrain.Map
	units    *units.Registry
	bf       core.Battlefield
	resolver *reach.Resolver

	rules          combat.Rules
	rng            combat.Rand
	movementPoints int
	maxDepth       int
	turn           int
	pending        *Pending

	log      zerolog.Logger
	recorder Recorder
	stats    Stats
	match    string
	metrics  Metrics
	now      func() time.Time
}

// New creates a battle on turn 1 over the given map and units.
func New(m *terrain.Map, reg *units.Registry, opts ...Option) *Battle {
	b := &Battle{
		terrain:        m,
		units:          reg,
		bf:             core.NewBattlefield(m, reg),
		rules:          combat.DefaultRules(),
		movementPoints: DefaultMovementPoints,
		maxDepth:       reach.DefaultMaxDepth,
		turn:           1,
		log:            zerolog.Nop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = combat.NewRand(uint64(b.now().UnixNano()))
	}
	b.resolver = reach.NewResolver(b.bf, reach.WithMaxDepth(b.maxDepth))
	return b
}

// Turn returns the current turn number.
func (b *Battle) Turn() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.turn
}

// Units returns the unit registry.
func (b *Battle) Units() *units.Registry {
	return b.units
}

// Terrain returns the map.
func (b *Battle) Terrain() *terrain.Map {
	return b.terrain
}

// Rules returns the combat rules in use.
func (b *Battle) Rules() combat.Rules {
	return b.rules
}

// Reachable lists the destinations of unit id.
func (b *Battle) Reachable(id core.UnitID) (map[hex.Position]reach.Route, error) {
	if _, ok := b.units.Lookup(id); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, id)
	}
	return b.resolver.Reachable(id), nil
}

// MoveUnitTo sends unit id to dest. A plain move is applied at once and nil
// is returned. An attack is only previewed: the returned Pending holds the
// engagement as fought from the staging cell and replaces any earlier one.
func (b *Battle) MoveUnitTo(ctx context.Context, id core.UnitID, dest hex.Position) (*Pending, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = nil

	u, ok := b.units.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, id)
	}
	if u.IsExhausted() {
		return nil, fmt.Errorf("%w: %q", ErrExhausted, u.Name)
	}
	route, ok := b.resolver.Route(id, dest)
	if !ok {
		return nil, fmt.Errorf("%w: %q to %s", ErrUnreachable, u.Name, dest.Offset())
	}

	if route.Attack {
		return b.stage(u, route)
	}
	return nil, b.move(ctx, u, route)
}

func (b *Battle) move(ctx context.Context, u core.Unit, route reach.Route) error {
	deducted := route.MovementCost(u.Movements)
	if err := b.units.SetPosition(u.ID, route.Destination()); err != nil {
		return fmt.Errorf("failed to move %q: %w", u.Name, err)
	}
	left := u.Movements - deducted
	if err := b.units.SetMovements(u.ID, left); err != nil {
		return fmt.Errorf("failed to deduct movement of %q: %w", u.Name, err)
	}

	e := core.MoveEvent{
		Time:      b.now(),
		Turn:      b.turn,
		UnitID:    u.ID,
		UnitName:  u.Name,
		Owner:     u.Owner,
		Path:      route.Path.Positions(),
		Cost:      route.Cost,
		Deducted:  deducted,
		Exhausted: left <= 0,
	}
	b.log.Debug().
		Str("unit", u.Name).
		Stringer("from", e.From().Offset()).
		Stringer("to", e.To().Offset()).
		Int("cost", e.Cost).
		Int("left", max(left, 0)).
		Msg("Unit moved")

	if b.recorder != nil {
		if err := b.recorder.RecordMove(&e); err != nil {
			b.log.Error().Err(err).Str("unit", u.Name).Msg("Failed to journal move")
		}
	}
	if b.stats != nil {
		if err := b.stats.RecordMove(b.match, e); err != nil {
			b.log.Warn().Err(err).Msg("Failed to write move point")
		}
	}
	if b.metrics != nil {
		b.metrics.RecordMove(ctx, e)
	}
	return nil
}

func (b *Battle) stage(u core.Unit, route reach.Route) (*Pending, error) {
	defID, ok := b.units.UnitAt(route.Destination())
	if !ok {
		return nil, fmt.Errorf("%w: no defender at %s", ErrUnreachable, route.Destination().Offset())
	}
	bf := combat.Project(b.bf, u.ID, route.Staging())
	eng, err := combat.Prepare(bf, u.ID, defID, b.rules)
	if err != nil {
		return nil, err
	}
	p := &Pending{
		Route:      route,
		Engagement: eng,
		attacker:   u.ID,
		defender:   defID,
		turn:       b.turn,
	}
	b.pending = p
	b.log.Debug().
		Str("attacker", eng.Attacker.Name).
		Str("defender", eng.Defender.Name).
		Stringer("staging", route.Staging().Offset()).
		Stringer("toAttacker", eng.ToAttacker).
		Stringer("toDefender", eng.ToDefender).
		Msg("Engagement staged")
	return p, nil
}

// Confirm settles a pending engagement: the attacker steps onto the staging
// cell, both damages are rolled, dead units leave the battlefield and a
// surviving attacker takes the defender's cell on capture. The attacker's
// movement is used up whatever the outcome.
func (b *Battle) Confirm(ctx context.Context, p *Pending) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.validate(p); err != nil {
		return Result{}, err
	}
	b.pending = nil

	eng := p.Engagement
	dest := p.Route.Destination()
	o := eng.Roll(b.rng)
	if err := b.units.Settle(units.Settlement{
		Attacker:    p.attacker,
		Defender:    p.defender,
		Staging:     p.Route.Staging(),
		Destination: dest,
		AttackerHP:  o.AttackerHP,
		DefenderHP:  o.DefenderHP,
		Captured:    o.Captured,
	}); err != nil {
		return Result{}, fmt.Errorf("failed to settle engagement: %w", err)
	}

	e := combatEvent(eng, o)
	e.Time = b.now()
	e.Turn = b.turn
	b.log.Info().
		Str("attacker", eng.Attacker.Name).
		Str("defender", eng.Defender.Name).
		Int("attackerHP", o.AttackerHP).
		Int("defenderHP", o.DefenderHP).
		Bool("captured", o.Captured).
		Stringer("at", dest.Offset()).
		Msg(e.Verdict)

	if b.recorder != nil {
		if err := b.recorder.RecordCombat(&e); err != nil {
			b.log.Error().Err(err).Msg("Failed to journal engagement")
		}
	}
	if b.stats != nil {
		if err := b.stats.RecordCombat(b.match, e); err != nil {
			b.log.Warn().Err(err).Msg("Failed to write engagement point")
		}
	}
	if b.metrics != nil {
		b.metrics.RecordCombat(ctx, e)
	}
	return Result{Outcome: o, Event: e}, nil
}

// validate checks that p is the live pending engagement and that nothing
// it was computed from has moved since.
func (b *Battle) validate(p *Pending) error {
	if p == nil || p != b.pending || p.turn != b.turn || p.Engagement.Rolled() {
		return ErrStalePending
	}
	att, ok := b.units.Lookup(p.attacker)
	if !ok || att.Pos != p.Route.Path.Origin() || att.IsExhausted() {
		return fmt.Errorf("%w: attacker changed", ErrStalePending)
	}
	def, ok := b.units.Lookup(p.defender)
	if !ok || def.Pos != p.Route.Destination() {
		return fmt.Errorf("%w: defender changed", ErrStalePending)
	}
	if id, ok := b.units.UnitAt(p.Route.Staging()); ok && id != p.attacker {
		return fmt.Errorf("%w: staging cell taken", ErrStalePending)
	}
	return nil
}

// Withdraw discards a pending engagement.
func (b *Battle) Withdraw(p *Pending) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p == nil || p != b.pending {
		return ErrStalePending
	}
	b.pending = nil
	return nil
}

// NewTurn advances the turn and refreshes every unit's movement points.
// Any pending engagement is dropped.
func (b *Battle) NewTurn() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
	b.turn++
	b.units.Refresh(b.movementPoints)
	b.log.Debug().Int("turn", b.turn).Msg("New turn")
	return b.turn
}

// NextActive returns the next unit of owner after the given id that can
// still move.
func (b *Battle) NextActive(after core.UnitID, owner core.Owner) (core.Unit, bool) {
	return b.units.NextActive(after, owner)
}

// Render draws the map with each unit's symbol over its tile.
func (b *Battle) Render() string {
	rows := strings.Split(strings.TrimSuffix(b.terrain.String(), "\n"), "\n")
	grid := make([][]rune, len(rows))
	for i, row := range rows {
		grid[i] = []rune(row)
	}
	for _, u := range b.units.All() {
		o := u.Pos.Offset()
		if o.Row >= 0 && o.Row < len(grid) && o.Col >= 0 && o.Col < len(grid[o.Row]) {
			grid[o.Row][o.Col] = u.Symbol()
		}
	}
	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func combatEvent(eng *combat.Engagement, o combat.Outcome) core.CombatEvent {
	return core.CombatEvent{
		Ranged:   eng.Ranged,
		Attacker: combatSide(eng.Attacker, eng.ToAttacker, o.AttackerDamage, o.AttackerHP),
		Defender: combatSide(eng.Defender, eng.ToDefender, o.DefenderDamage, o.DefenderHP),
		Captured: o.Captured,
		Verdict:  string(o.Verdict()),
	}
}

func combatSide(c combat.Combatant, r combat.Range, damage, hp int) core.CombatSide {
	side := core.CombatSide{
		UnitID:    c.ID,
		Name:      c.Name,
		Owner:     c.Owner,
		Pos:       c.Pos,
		Strength:  c.Strength(),
		StartHP:   c.HP,
		FinalHP:   hp,
		DamageMin: r.Min,
		DamageMax: r.Max,
		Damage:    damage,
	}
	for _, m := range c.Modifiers {
		side.Modifiers = append(side.Modifiers, core.CombatModifier{Kind: m.Kind.String(), Percent: m.Percent})
	}
	return side
}
