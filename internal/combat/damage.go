// Package combat resolves engagements between two units: strength
// modifiers, damage ranges and the roll that settles them.
package combat

import (
	"fmt"
	"math"
)

// Rules holds the tunable constants of the damage model.
type Rules struct {
	// BaseMin is the minimum melee damage between equal units.
	BaseMin float64
	// RangedBaseMin replaces BaseMin for ranged engagements.
	RangedBaseMin float64
	// BaseSpread is added on top of the minimum to get the maximum.
	BaseSpread float64
	// FlankBonus is the percentage granted per flanking unit beyond the
	// first.
	FlankBonus int
	// PenaltyBand is the HP width of one self-damage penalty step.
	PenaltyBand int
	// PenaltyStep is the fraction of output lost per band of missing HP.
	PenaltyStep float64
}

// DefaultRules returns the standard rules.
func DefaultRules() Rules {
	return Rules{
		BaseMin:       40,
		RangedBaseMin: 20,
		BaseSpread:    30,
		FlankBonus:    10,
		PenaltyBand:   20,
		PenaltyStep:   0.1,
	}
}

// Range is an inclusive damage interval.
type Range struct {
	Min, Max int
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// Contains reports whether v lies in r.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Multiplier returns the damage scale for a source of strength source
// hitting a target of strength target. Both must be positive.
func Multiplier(source, target float64) float64 {
	strong, weak := math.Max(source, target), math.Min(source, target)
	r := strong / weak
	m := 0.5 + math.Pow(r+3, 4)/512
	if target > source {
		m = 1 / m
	}
	return m
}

// Penalty returns the fraction of output a source with hp hit points loses.
func (r Rules) Penalty(hp int) float64 {
	hp = min(max(hp, 0), 100)
	if r.PenaltyBand <= 0 {
		return 0
	}
	p := float64((100-hp)/r.PenaltyBand) * r.PenaltyStep
	return math.Round(p*1e9) / 1e9
}

// DamageRange returns the damage a source deals to a target, given both
// effective strengths and the source's current hit points.
func (r Rules) DamageRange(source, target float64, sourceHP int, ranged bool) Range {
	if source <= 0 || target <= 0 {
		panic(fmt.Sprintf("combat: damage range with non-positive strength %.2f vs %.2f", source, target))
	}
	m := Multiplier(source, target)
	base := r.BaseMin
	if ranged {
		base = r.RangedBaseMin
	}
	lo := base * m
	spread := r.BaseSpread * m

	penalty := r.Penalty(sourceHP)
	lo -= lo * penalty
	spread -= spread * penalty

	out := Range{
		Min: max(floor(lo), 1),
		Max: floor(lo + spread),
	}
	if out.Max < out.Min {
		out.Max = out.Min
	}
	return out
}

// floor tolerates float error just below an integer.
func floor(v float64) int {
	return int(math.Floor(v + 1e-9))
}
