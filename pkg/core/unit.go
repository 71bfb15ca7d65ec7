// pkg/core/unit.go
package core

import "github.com/hexfront/tactics/pkg/hex"

// UnitID identifies a unit in the registry. Zero is never assigned.
type UnitID uint

// Owner is the allegiance tag of a unit. Units with different owners are
// enemies.
type Owner string

// Unit is a read-only snapshot of a unit's state.
type Unit struct {
	ID             UnitID
	Name           string
	Owner          Owner
	Pos            hex.Position
	Strength       int
	RangedStrength int
	HP             int
	Movements      int
}

// IsExhausted reports whether the unit has no movement left this turn.
func (u Unit) IsExhausted() bool {
	return u.Movements <= 0
}

// IsRanged reports whether the unit attacks at range.
func (u Unit) IsRanged() bool {
	return u.RangedStrength != 0
}

// Symbol is the one-letter map symbol, the first letter of the name.
func (u Unit) Symbol() rune {
	for _, r := range u.Name {
		return r
	}
	return '?'
}
