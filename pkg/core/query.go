// pkg/core/query.go
package core

import "github.com/hexfront/tactics/pkg/hex"

// TerrainQuery answers terrain questions by position. Positions outside the
// map report as impassable.
type TerrainQuery interface {
	IsPassable(pos hex.Position) bool
	MovementCost(pos hex.Position) int
	// DefenseModifier is the signed percentage granted to a defender
	// standing on pos.
	DefenseModifier(pos hex.Position) int
}

// UnitQuery answers occupancy and unit state questions.
type UnitQuery interface {
	UnitAt(pos hex.Position) (UnitID, bool)
	// Unit panics when id is not registered.
	Unit(id UnitID) Unit
}

// Battlefield combines the queries the resolvers read from.
type Battlefield interface {
	TerrainQuery
	UnitQuery
}

type battlefield struct {
	TerrainQuery
	UnitQuery
}

// NewBattlefield joins a terrain and a unit query.
func NewBattlefield(t TerrainQuery, u UnitQuery) Battlefield {
	return battlefield{TerrainQuery: t, UnitQuery: u}
}
