// Package reach computes where a unit can move this turn: every reachable
// destination with the cheapest route found, honoring terrain costs,
// occupation and enemy zones of control.
package reach

import (
	"cmp"
	"slices"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

// DefaultMaxDepth caps path enumeration regardless of a unit's budget.
const DefaultMaxDepth = 8

// Resolver computes reachable destinations over a battlefield. It only
// reads from the battlefield.
type Resolver struct {
	bf       core.Battlefield
	maxDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth caps the enumeration depth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n >= 1 {
			r.maxDepth = n
		}
	}
}

// NewResolver creates a resolver over bf.
func NewResolver(bf core.Battlefield, opts ...Option) *Resolver {
	r := &Resolver{bf: bf, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reachable returns every destination unit id can reach with its remaining
// movement points, mapped to the cheapest route found. Among equally cheap
// routes the first one enumerated wins. It panics when id is unknown.
func (r *Resolver) Reachable(id core.UnitID) map[hex.Position]Route {
	u := r.bf.Unit(id)
	return r.ReachableFrom(u.Owner, u.Pos, u.Movements)
}

// ReachableFrom runs the search for a unit of owner standing on origin with
// budget points.
func (r *Resolver) ReachableFrom(owner core.Owner, origin hex.Position, budget int) map[hex.Position]Route {
	out := make(map[hex.Position]Route)
	if budget <= 0 {
		return out
	}

	e := hex.NewEnumerator(origin, min(budget, r.maxDepth))
	for {
		p, ok := e.Advance()
		if !ok {
			break
		}
		route := Classify(r.bf, owner, p)
		if !route.CouldBeReachable {
			e.Prune()
			continue
		}
		if route.Reachable {
			dest := p.To()
			if prev, seen := out[dest]; !seen || route.Cost < prev.Cost {
				route.Path = p.Clone()
				out[dest] = route
			}
		}
		if route.Cost >= budget {
			e.Prune()
		}
	}
	return out
}

// Route returns the cheapest route of unit id to dest.
func (r *Resolver) Route(id core.UnitID, dest hex.Position) (Route, bool) {
	route, ok := r.Reachable(id)[dest]
	return route, ok
}

// Sorted lists routes by destination row, then column.
func Sorted(routes map[hex.Position]Route) []Route {
	out := make([]Route, 0, len(routes))
	for _, route := range routes {
		out = append(out, route)
	}
	slices.SortFunc(out, func(a, b Route) int {
		oa, ob := a.Destination().Offset(), b.Destination().Offset()
		return cmp.Or(cmp.Compare(oa.Row, ob.Row), cmp.Compare(oa.Col, ob.Col))
	})
	return out
}
