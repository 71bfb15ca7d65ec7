package reach

import (
	"fmt"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

// Route is a classified path.
type Route struct {
	Path hex.Path
	// Cost is the summed movement cost of every cell after the origin.
	Cost int
	// CouldBeReachable is false when no extension of the path can be
	// reachable either.
	CouldBeReachable bool
	Reachable        bool
	// Exhausting routes end with a step from one enemy ZOC cell into
	// another and use up all remaining movement.
	Exhausting bool
	// Attack routes end on an enemy unit.
	Attack bool
}

// Destination returns the last cell of the route.
func (r Route) Destination() hex.Position {
	return r.Path.To()
}

// Staging returns the cell an attacker fights from: the cell before the
// destination, or the origin for a one-step route.
func (r Route) Staging() hex.Position {
	if r.Path.Len() == 0 {
		return r.Path.Origin()
	}
	return r.Path.At(r.Path.Len() - 1)
}

// MovementCost returns how many points taking the route deducts from a unit
// holding remaining points. It never exceeds remaining.
func (r Route) MovementCost(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	if r.Exhausting {
		return remaining
	}
	return min(r.Cost, remaining)
}

func (r Route) String() string {
	flags := ""
	if r.Exhausting {
		flags += " exhausting"
	}
	if r.Attack {
		flags += " attack"
	}
	return fmt.Sprintf("%s (cost %d%s)", r.Path, r.Cost, flags)
}

// Classify rates path p for a unit owned by owner against the current state
// of bf. The returned Route holds p as given; callers that keep it past the
// next enumerator Advance must clone the path.
func Classify(bf core.Battlefield, owner core.Owner, p hex.Path) Route {
	r := Route{Path: p, CouldBeReachable: true}
	n := p.Len()

	id, ok := bf.UnitAt(p.Origin())
	if !ok || bf.Unit(id).Owner != owner {
		r.CouldBeReachable = false
		return r
	}

	zoc := make([]bool, n+1)
	for i := 0; i <= n; i++ {
		pos := p.At(i)
		if i > 0 {
			if !bf.IsPassable(pos) {
				r.CouldBeReachable = false
				return r
			}
			r.Cost += bf.MovementCost(pos)
		}
		zoc[i] = HindranceAt(bf, owner, pos).Has(UnderZOC)
		// the destination may end a ZOC-to-ZOC step, nothing before it may
		if i > 0 && i < n && zoc[i-1] && zoc[i] {
			r.CouldBeReachable = false
			return r
		}
	}

	if n == 0 {
		return r
	}
	r.Exhausting = zoc[n-1] && zoc[n]

	dest := HindranceAt(bf, owner, p.To())
	switch {
	case !dest.Has(Occupied):
		r.Reachable = true
	case IsEnemyAt(bf, owner, p.To()):
		r.Attack = true
		r.Reachable = n == 1 || !HindranceAt(bf, owner, p.At(n-1)).Has(Occupied)
	}
	return r
}
