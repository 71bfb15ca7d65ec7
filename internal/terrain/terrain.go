// Package terrain holds terrain kinds and the offset-grid terrain map the
// resolvers query.
package terrain

import "fmt"

// Terrain is a tile kind.
type Terrain uint8

const (
	Plain Terrain = iota
	Grassland
	Desert
	Hill
	Mountain
	Water
	// OutOfBounds is reported for any position outside the map.
	OutOfBounds
)

// All lists the kinds that can appear on a map, in map-file order.
var All = []Terrain{Plain, Grassland, Desert, Hill, Mountain, Water}

func (t Terrain) String() string {
	return t.Name()
}

// Name returns the display name.
func (t Terrain) Name() string {
	switch t {
	case Plain:
		return "Plain"
	case Grassland:
		return "Grassland"
	case Desert:
		return "Desert"
	case Hill:
		return "Hill"
	case Mountain:
		return "Mountain"
	case Water:
		return "Water"
	case OutOfBounds:
		return "Out of bounds"
	default:
		return fmt.Sprintf("Terrain(%d)", uint8(t))
	}
}

// Symbol is the character used for t in text maps. OutOfBounds has none
// and returns 0.
func (t Terrain) Symbol() rune {
	switch t {
	case Plain:
		return '\''
	case Grassland:
		return '"'
	case Desert:
		return ' '
	case Hill:
		return '^'
	case Mountain:
		return 'A'
	case Water:
		return '~'
	default:
		return 0
	}
}

// FromSymbol maps a text map character to its terrain. Unknown characters
// are water.
func FromSymbol(r rune) Terrain {
	for _, t := range All {
		if t.Symbol() == r {
			return t
		}
	}
	return Water
}

// IsPassable reports whether land units can enter t.
func (t Terrain) IsPassable() bool {
	switch t {
	case Mountain, Water, OutOfBounds:
		return false
	default:
		return true
	}
}

// MovementCost is the number of movement points spent entering t.
func (t Terrain) MovementCost() int {
	if t == Hill {
		return 2
	}
	return 1
}

// DefenseModifier is the percentage bonus of a defender standing on t.
func (t Terrain) DefenseModifier() int {
	if t == Hill {
		return 25
	}
	return 0
}
