package combat

import (
	"fmt"
	"math/rand/v2"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

// ModifierKind tags where a strength modifier comes from.
type ModifierKind uint8

const (
	TerrainModifier ModifierKind = iota
	FlankingModifier
)

func (k ModifierKind) String() string {
	switch k {
	case TerrainModifier:
		return "terrain"
	case FlankingModifier:
		return "flanking"
	default:
		return fmt.Sprintf("ModifierKind(%d)", uint8(k))
	}
}

// Modifier is a signed percentage applied to base strength.
type Modifier struct {
	Kind    ModifierKind
	Percent int
}

// Combatant is one side of an engagement.
type Combatant struct {
	ID    core.UnitID
	Name  string
	Owner core.Owner
	Pos   hex.Position
	// Base is the strength used in this engagement, melee or ranged.
	Base      int
	HP        int
	Modifiers []Modifier
}

// ModifierTotal sums every modifier percentage.
func (c Combatant) ModifierTotal() int {
	total := 0
	for _, m := range c.Modifiers {
		total += m.Percent
	}
	return total
}

// Strength returns base strength scaled by the modifiers.
func (c Combatant) Strength() float64 {
	return float64(c.Base) * (1 + float64(c.ModifierTotal())/100)
}

// Rand is the dice source of a roll.
type Rand interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

// NewRand returns a PCG generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Engagement is the snapshot of one fight. Damage ranges are fixed on
// creation; Roll settles the fight once.
type Engagement struct {
	Attacker Combatant
	Defender Combatant
	Ranged   bool

	// ToAttacker is the damage the attacker may take.
	ToAttacker Range
	// ToDefender is the damage the defender may take.
	ToDefender Range

	rules   Rules
	outcome *Outcome
}

// NewEngagement computes both damage ranges. It panics when either side has
// no positive effective strength; callers validate with Prepare first.
func NewEngagement(att, def Combatant, ranged bool, rules Rules) *Engagement {
	as, ds := att.Strength(), def.Strength()
	if as <= 0 || ds <= 0 {
		panic(fmt.Sprintf("combat: zero strength engagement between %q (%.2f) and %q (%.2f)", att.Name, as, def.Name, ds))
	}
	e := &Engagement{
		Attacker: att,
		Defender: def,
		Ranged:   ranged,
		rules:    rules,
	}
	e.ToDefender = rules.DamageRange(as, ds, att.HP, ranged)
	if !ranged {
		e.ToAttacker = rules.DamageRange(ds, as, def.HP, false)
	}
	return e
}

// Rules returns the rules the ranges were computed with.
func (e *Engagement) Rules() Rules {
	return e.rules
}

// Rolled reports whether Roll was called.
func (e *Engagement) Rolled() bool {
	return e.outcome != nil
}

// Outcome returns the rolled result, if any.
func (e *Engagement) Outcome() (Outcome, bool) {
	if e.outcome == nil {
		return Outcome{}, false
	}
	return *e.outcome, true
}

// Roll draws both damages from their ranges and arbitrates deaths so that at
// most one side dies. It panics when called twice.
func (e *Engagement) Roll(rng Rand) Outcome {
	if e.outcome != nil {
		panic("combat: engagement rolled twice")
	}

	o := Outcome{
		DefenderDamage: draw(rng, e.ToDefender),
	}
	if !e.Ranged {
		o.AttackerDamage = draw(rng, e.ToAttacker)
	}

	atkHP := e.Attacker.HP - o.AttackerDamage
	defHP := e.Defender.HP - o.DefenderDamage
	if atkHP <= 0 && defHP <= 0 {
		if e.attackerSurvives(atkHP, defHP) {
			atkHP = 1
			o.Revived = RevivedAttacker
		} else {
			defHP = 1
			o.Revived = RevivedDefender
		}
	}
	o.AttackerHP = min(max(atkHP, 0), e.Attacker.HP)
	o.DefenderHP = min(max(defHP, 0), e.Defender.HP)
	o.Captured = o.DefenderHP == 0

	e.outcome = &o
	return o
}

// attackerSurvives breaks a double death: the less negative side lives, then
// the stronger, then the defender.
func (e *Engagement) attackerSurvives(atkHP, defHP int) bool {
	if atkHP != defHP {
		return atkHP > defHP
	}
	return e.Attacker.Strength() > e.Defender.Strength()
}

func draw(rng Rand, r Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}
