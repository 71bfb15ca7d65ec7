// Package units keeps the live unit registry: one occupant per cell,
// lookups by id and by position.
package units

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

var (
	// ErrOccupied is returned when a cell already holds a unit.
	ErrOccupied = errors.New("cell already occupied")
	// ErrNotFound is returned for ids that are not registered.
	ErrNotFound = errors.New("unit not found")
	// ErrInvalidUnit is returned for units that cannot be registered.
	ErrInvalidUnit = errors.New("invalid unit")
)

// Registry stores units and their positions.
type Registry struct {
	mu     sync.RWMutex
	units  map[core.UnitID]*core.Unit
	byPos  map[hex.Position]core.UnitID
	lastID core.UnitID
}

var _ core.UnitQuery = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		units: make(map[core.UnitID]*core.Unit),
		byPos: make(map[hex.Position]core.UnitID),
	}
}

// Add registers u and assigns its ID. The passed unit is updated with the
// assigned ID.
func (r *Registry) Add(u *core.Unit) error {
	if u.Owner == "" {
		return fmt.Errorf("%w: %q has no owner", ErrInvalidUnit, u.Name)
	}
	if u.HP <= 0 {
		return fmt.Errorf("%w: %q has %d HP", ErrInvalidUnit, u.Name, u.HP)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if other, ok := r.byPos[u.Pos]; ok {
		return fmt.Errorf("%w: %s holds unit %d", ErrOccupied, u.Pos, other)
	}

	r.lastID++
	u.ID = r.lastID
	stored := *u
	r.units[u.ID] = &stored
	r.byPos[u.Pos] = u.ID
	return nil
}

// Unit returns the unit with the given id. It panics when id is unknown.
func (r *Registry) Unit(id core.UnitID) core.Unit {
	u, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("units: no unit with id %d", id))
	}
	return u
}

// Lookup returns the unit with the given id.
func (r *Registry) Lookup(id core.UnitID) (core.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[id]
	if !ok {
		return core.Unit{}, false
	}
	return *u, true
}

// ByName returns the first unit, in id order, with the given name.
func (r *Registry) ByName(name string) (core.Unit, bool) {
	for _, u := range r.All() {
		if u.Name == name {
			return u, true
		}
	}
	return core.Unit{}, false
}

// UnitAt returns the occupant of pos.
func (r *Registry) UnitAt(pos hex.Position) (core.UnitID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPos[pos]
	return id, ok
}

// All returns every unit ordered by id.
func (r *Registry) All() []core.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b core.Unit) int {
		return int(a.ID) - int(b.ID)
	})
	return out
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// SetPosition moves a unit. Moving onto its own cell is a no-op.
func (r *Registry) SetPosition(id core.UnitID, pos hex.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.units[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if u.Pos == pos {
		return nil
	}
	if other, ok := r.byPos[pos]; ok {
		return fmt.Errorf("%w: %s holds unit %d", ErrOccupied, pos, other)
	}
	delete(r.byPos, u.Pos)
	u.Pos = pos
	r.byPos[pos] = id
	return nil
}

// SetMovements updates a unit's remaining movement points. Negative values
// are stored as zero.
func (r *Registry) SetMovements(id core.UnitID, mp int) error {
	return r.update(id, func(u *core.Unit) { u.Movements = max(mp, 0) })
}

// Settlement is the aftermath of one engagement. A side whose HP is zero or
// less is removed. A surviving attacker ends on Staging, or on Destination
// when Captured, with no movement left.
type Settlement struct {
	Attacker    core.UnitID
	Defender    core.UnitID
	Staging     hex.Position
	Destination hex.Position
	AttackerHP  int
	DefenderHP  int
	Captured    bool
}

// Settle applies s atomically: every check runs before anything changes, so
// on error the registry is left as it was.
func (r *Registry) Settle(s Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	att, ok := r.units[s.Attacker]
	if !ok {
		return fmt.Errorf("%w: attacker %d", ErrNotFound, s.Attacker)
	}
	def, ok := r.units[s.Defender]
	if !ok {
		return fmt.Errorf("%w: defender %d", ErrNotFound, s.Defender)
	}
	attackerDead, defenderDead := s.AttackerHP <= 0, s.DefenderHP <= 0

	end := s.Staging
	if s.Captured {
		end = s.Destination
	}
	if !attackerDead {
		if other, ok := r.byPos[end]; ok && other != s.Attacker && !(other == s.Defender && defenderDead) {
			return fmt.Errorf("%w: %s holds unit %d", ErrOccupied, end, other)
		}
	}

	if defenderDead {
		delete(r.byPos, def.Pos)
		delete(r.units, s.Defender)
	} else {
		def.HP = s.DefenderHP
	}

	delete(r.byPos, att.Pos)
	if attackerDead {
		delete(r.units, s.Attacker)
		return nil
	}
	att.Pos = end
	att.HP = s.AttackerHP
	att.Movements = 0
	r.byPos[end] = s.Attacker
	return nil
}

// Refresh gives every unit mp movement points for a new turn.
func (r *Registry) Refresh(mp int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.units {
		u.Movements = mp
	}
}

// NextActive returns the next unit after the given id, in id order and
// wrapping around, that belongs to owner and still has movement left. The
// unit after itself is considered last, so a lone active unit is returned.
func (r *Registry) NextActive(after core.UnitID, owner core.Owner) (core.Unit, bool) {
	all := r.All()
	if len(all) == 0 {
		return core.Unit{}, false
	}
	start := 0
	for i, u := range all {
		if u.ID > after {
			start = i
			break
		}
		start = i + 1
	}
	for i := range all {
		u := all[(start+i)%len(all)]
		if u.Owner == owner && !u.IsExhausted() {
			return u, true
		}
	}
	return core.Unit{}, false
}

func (r *Registry) update(id core.UnitID, fn func(*core.Unit)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	fn(u)
	return nil
}
