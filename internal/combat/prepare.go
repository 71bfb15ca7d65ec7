package combat

import (
	"errors"
	"fmt"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

var (
	// ErrZeroStrength is returned when a side has no strength to fight with.
	ErrZeroStrength = errors.New("combatant has zero strength")
	// ErrFriendlyFire is returned when both units share an owner.
	ErrFriendlyFire = errors.New("combatants share an owner")
)

// FlankCount counts the units around target's position whose owner is not
// target's owner.
func FlankCount(units core.UnitQuery, target core.Unit) int {
	count := 0
	for _, pos := range target.Pos.Around() {
		if id, ok := units.UnitAt(pos); ok && units.Unit(id).Owner != target.Owner {
			count++
		}
	}
	return count
}

// FlankModifier returns the flanking bonus against target, if any.
func (r Rules) FlankModifier(units core.UnitQuery, target core.Unit) (Modifier, bool) {
	count := FlankCount(units, target)
	if count <= 1 {
		return Modifier{}, false
	}
	return Modifier{Kind: FlankingModifier, Percent: (count - 1) * r.FlankBonus}, true
}

// Prepare builds the engagement of attacker against defender from the
// battlefield state: engagement type, base strengths, flanking for both
// sides and the defender's terrain.
func Prepare(bf core.Battlefield, attacker, defender core.UnitID, rules Rules) (*Engagement, error) {
	a, d := bf.Unit(attacker), bf.Unit(defender)
	if a.Owner == d.Owner {
		return nil, fmt.Errorf("%w: %q and %q", ErrFriendlyFire, a.Name, d.Name)
	}

	ranged := a.IsRanged()
	att := combatant(a, a.Strength)
	def := combatant(d, d.Strength)
	if ranged {
		att.Base = a.RangedStrength
		def.Base = max(d.RangedStrength, d.Strength)
	}

	if m, ok := rules.FlankModifier(bf, d); ok {
		att.Modifiers = append(att.Modifiers, m)
	}
	if m, ok := rules.FlankModifier(bf, a); ok {
		def.Modifiers = append(def.Modifiers, m)
	}
	if pct := bf.DefenseModifier(d.Pos); pct != 0 {
		def.Modifiers = append(def.Modifiers, Modifier{Kind: TerrainModifier, Percent: pct})
	}

	if att.Strength() <= 0 {
		return nil, fmt.Errorf("%w: attacker %q", ErrZeroStrength, a.Name)
	}
	if def.Strength() <= 0 {
		return nil, fmt.Errorf("%w: defender %q", ErrZeroStrength, d.Name)
	}
	return NewEngagement(att, def, ranged, rules), nil
}

func combatant(u core.Unit, base int) Combatant {
	return Combatant{
		ID:    u.ID,
		Name:  u.Name,
		Owner: u.Owner,
		Pos:   u.Pos,
		Base:  base,
		HP:    u.HP,
	}
}

// Projected overlays a unit query so that one unit appears on another cell.
// It previews a fight from the cell an attacker will move to.
type Projected struct {
	core.Battlefield
	id  core.UnitID
	pos hex.Position
	// from is the unit's real cell, seen as empty
	from hex.Position
}

// Project returns bf with unit id moved to pos.
func Project(bf core.Battlefield, id core.UnitID, pos hex.Position) *Projected {
	return &Projected{Battlefield: bf, id: id, pos: pos, from: bf.Unit(id).Pos}
}

func (p *Projected) UnitAt(pos hex.Position) (core.UnitID, bool) {
	if pos == p.pos {
		return p.id, true
	}
	if pos == p.from {
		return 0, false
	}
	return p.Battlefield.UnitAt(pos)
}

func (p *Projected) Unit(id core.UnitID) core.Unit {
	u := p.Battlefield.Unit(id)
	if id == p.id {
		u.Pos = p.pos
	}
	return u
}
