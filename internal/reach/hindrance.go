package reach

import (
	"strings"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

// Hindrance flags what stands in a mover's way on a cell.
type Hindrance uint8

const (
	// Occupied means a unit of any owner sits on the cell.
	Occupied Hindrance = 1 << iota
	// UnderZOC means an enemy sits on the cell or on one of its neighbors.
	UnderZOC
)

// Has reports whether every flag of f is set.
func (h Hindrance) Has(f Hindrance) bool {
	return h&f == f
}

func (h Hindrance) String() string {
	var parts []string
	if h.Has(Occupied) {
		parts = append(parts, "occupied")
	}
	if h.Has(UnderZOC) {
		parts = append(parts, "zoc")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// HindranceAt computes the hindrances of pos for a unit owned by owner.
func HindranceAt(units core.UnitQuery, owner core.Owner, pos hex.Position) Hindrance {
	var h Hindrance
	if id, ok := units.UnitAt(pos); ok {
		h |= Occupied
		if units.Unit(id).Owner != owner {
			h |= UnderZOC
		}
	}
	if !h.Has(UnderZOC) && enemyAround(units, owner, pos) {
		h |= UnderZOC
	}
	return h
}

func enemyAround(units core.UnitQuery, owner core.Owner, pos hex.Position) bool {
	for _, n := range pos.Around() {
		if id, ok := units.UnitAt(n); ok && units.Unit(id).Owner != owner {
			return true
		}
	}
	return false
}

// IsEnemyAt reports whether pos holds a unit whose owner is not owner.
func IsEnemyAt(units core.UnitQuery, owner core.Owner, pos hex.Position) bool {
	id, ok := units.UnitAt(pos)
	return ok && units.Unit(id).Owner != owner
}
