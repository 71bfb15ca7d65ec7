// Package scenario loads skirmish scenarios from JSON and replays their
// orders on a battle.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hexfront/tactics/internal/battle"
	"github.com/hexfront/tactics/internal/dispatcher"
	"github.com/hexfront/tactics/internal/terrain"
	"github.com/hexfront/tactics/internal/units"
	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// DefaultHP is given to units that do not set one.
const DefaultHP = 100

// ErrInvalid is returned for scenarios that cannot be set up.
var ErrInvalid = errors.New("invalid scenario")

// UnitSpec places one unit.
type UnitSpec struct {
	Name           string `json:"name" mapstructure:"name"`
	Owner          string `json:"owner" mapstructure:"owner"`
	Col            int    `json:"col" mapstructure:"col"`
	Row            int    `json:"row" mapstructure:"row"`
	Strength       int    `json:"strength" mapstructure:"strength"`
	RangedStrength int    `json:"rangedStrength" mapstructure:"rangedStrength"`
	HP             int    `json:"hp" mapstructure:"hp"`
}

// Order is one scripted action. An order with EndTurn set only advances the
// turn; any other order sends Unit to the cell at Col, Row and, when that
// starts an attack, confirms or withdraws it.
type Order struct {
	Unit    string `json:"unit" mapstructure:"unit"`
	Col     int    `json:"col" mapstructure:"col"`
	Row     int    `json:"row" mapstructure:"row"`
	Confirm bool   `json:"confirm" mapstructure:"confirm"`
	EndTurn bool   `json:"endTurn" mapstructure:"endTurn"`
}

// Dest returns the order's target cell.
func (o Order) Dest() hex.Position {
	return hex.OffsetPos{Col: o.Col, Row: o.Row}.Position()
}

// Scenario is a map, a starting army list and a script of orders.
type Scenario struct {
	Match  string     `json:"match" mapstructure:"match"`
	Map    string     `json:"map" mapstructure:"map"`
	Seed   uint64     `json:"seed" mapstructure:"seed"`
	Units  []UnitSpec `json:"units" mapstructure:"units"`
	Orders []Order    `json:"orders" mapstructure:"orders"`

	dir string
}

// Load reads a scenario file. The map path is resolved relative to the
// scenario's directory.
func Load(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("match", "Skirmish")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading scenario: %w", err)
	}

	var s Scenario
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding scenario: %w", err)
	}
	s.dir = filepath.Dir(path)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// Validate checks that the scenario names a map, that unit names are unique
// and owned, and that every order names a declared unit.
func (s *Scenario) Validate() error {
	if s.Map == "" {
		return fmt.Errorf("%w: no map", ErrInvalid)
	}
	if len(s.Units) == 0 {
		return fmt.Errorf("%w: no units", ErrInvalid)
	}
	names := make(map[string]bool, len(s.Units))
	for _, u := range s.Units {
		if u.Name == "" || u.Owner == "" {
			return fmt.Errorf("%w: unit %q needs a name and an owner", ErrInvalid, u.Name)
		}
		if names[u.Name] {
			return fmt.Errorf("%w: duplicate unit %q", ErrInvalid, u.Name)
		}
		names[u.Name] = true
	}
	for i, o := range s.Orders {
		if o.EndTurn {
			continue
		}
		if !names[o.Unit] {
			return fmt.Errorf("%w: order %d names unknown unit %q", ErrInvalid, i, o.Unit)
		}
	}
	return nil
}

// MapPath returns the map file location.
func (s *Scenario) MapPath() string {
	if filepath.IsAbs(s.Map) || s.dir == "" {
		return s.Map
	}
	return filepath.Join(s.dir, s.Map)
}

// Setup loads the map and places every unit with mp movement points.
func (s *Scenario) Setup(mp int) (*terrain.Map, *units.Registry, error) {
	m, err := terrain.Load(s.MapPath())
	if err != nil {
		return nil, nil, err
	}
	reg, err := s.Place(m, mp)
	if err != nil {
		return nil, nil, err
	}
	return m, reg, nil
}

// Place registers the scenario units on m.
func (s *Scenario) Place(m *terrain.Map, mp int) (*units.Registry, error) {
	reg := units.NewRegistry()
	for _, us := range s.Units {
		pos := hex.OffsetPos{Col: us.Col, Row: us.Row}.Position()
		if !m.IsPassable(pos) {
			return nil, fmt.Errorf("%w: %q placed on impassable %s", ErrInvalid, us.Name, pos.Offset())
		}
		u := core.Unit{
			Name:           us.Name,
			Owner:          core.Owner(us.Owner),
			Pos:            pos,
			Strength:       us.Strength,
			RangedStrength: us.RangedStrength,
			HP:             us.HP,
			Movements:      mp,
		}
		if u.HP == 0 {
			u.HP = DefaultHP
		}
		if err := reg.Add(&u); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return reg, nil
}

// MatchInfo describes the scenario for the journal.
func (s *Scenario) MatchInfo(m *terrain.Map, start time.Time, seed uint64) *core.Match {
	return &core.Match{
		Name:      s.Match,
		MapName:   m.Name(),
		MapWidth:  m.Width(),
		MapHeight: m.Height(),
		StartTime: start,
		Seed:      seed,
	}
}

// Rejection is an order the battle refused.
type Rejection struct {
	Index int
	Order Order
	Err   error
}

// Report summarizes a replay.
type Report struct {
	Turns       int
	Moves       int
	Withdrawn   int
	Engagements []battle.Result
	Rejected    []Rejection
	Survivors   []core.Unit
}

// Winner returns the owner of every survivor, if they share one.
func (r *Report) Winner() (core.Owner, bool) {
	if len(r.Survivors) == 0 {
		return "", false
	}
	owner := r.Survivors[0].Owner
	for _, u := range r.Survivors[1:] {
		if u.Owner != owner {
			return "", false
		}
	}
	return owner, true
}

// Commands understood by the order dispatcher.
const (
	CommandMove    = "move"
	CommandEndTurn = "endTurn"
)

// RunOption configures a replay.
type RunOption func(*runConfig)

type runConfig struct {
	log   zerolog.Logger
	meter metric.Meter
}

// WithLogger logs every dispatched order.
func WithLogger(log zerolog.Logger) RunOption {
	return func(c *runConfig) { c.log = log }
}

// WithMeter counts dispatched orders on m.
func WithMeter(m metric.Meter) RunOption {
	return func(c *runConfig) { c.meter = m }
}

// Command returns the dispatcher command for o.
func (o Order) Command() string {
	if o.EndTurn {
		return CommandEndTurn
	}
	return CommandMove
}

// Run replays orders on b. Refused orders are collected in the report and
// do not stop the replay; only a cancelled context does.
func Run(ctx context.Context, b *battle.Battle, orders []Order, opts ...RunOption) (*Report, error) {
	cfg := runConfig{log: zerolog.Nop(), meter: noop.Meter{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	rep := &Report{}
	d, err := dispatcher.New[Order](cfg.log, cfg.meter)
	if err != nil {
		return nil, err
	}
	d.Register(CommandMove, func(ctx context.Context, e dispatcher.Event[Order]) (any, error) {
		return nil, step(ctx, b, e.Payload, rep)
	}, dispatcher.Logged())
	d.Register(CommandEndTurn, func(context.Context, dispatcher.Event[Order]) (any, error) {
		return b.NewTurn(), nil
	}, dispatcher.Logged())

	for i, o := range orders {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if _, err := d.Dispatch(ctx, o.Command(), o); err != nil {
			rep.Rejected = append(rep.Rejected, Rejection{Index: i, Order: o, Err: err})
		}
	}
	rep.Turns = b.Turn()
	rep.Survivors = b.Units().All()
	return rep, nil
}

func step(ctx context.Context, b *battle.Battle, o Order, rep *Report) error {
	u, ok := b.Units().ByName(o.Unit)
	if !ok {
		return fmt.Errorf("%w: %q", battle.ErrUnknownUnit, o.Unit)
	}
	p, err := b.MoveUnitTo(ctx, u.ID, o.Dest())
	if err != nil {
		return err
	}
	if p == nil {
		rep.Moves++
		return nil
	}
	if !o.Confirm {
		rep.Withdrawn++
		return b.Withdraw(p)
	}
	res, err := b.Confirm(ctx, p)
	if err != nil {
		return err
	}
	rep.Engagements = append(rep.Engagements, res)
	return nil
}
