// Package hex provides cube-coordinate hex positions, the six hex directions
// and depth-first path enumeration over the grid.
//
// Hexes are flat-topped and laid out in columns: North and South are
// vertical neighbors. Storage uses odd-q offset coordinates with (0,0) at
// the top-left corner and rows growing southward.
package hex

import "fmt"

// Direction is one of the six hex directions, clockwise from North.
type Direction int

const (
	North Direction = iota
	NorthEast
	SouthEast
	South
	SouthWest
	NorthWest
)

// Directions lists every direction in enumeration order.
var Directions = [6]Direction{North, NorthEast, SouthEast, South, SouthWest, NorthWest}

// cube deltas, indexed by Direction
var vectors = [6]Position{
	{X: 0, Y: 1, Z: -1}, // N
	{X: 1, Y: 0, Z: -1}, // NE
	{X: 1, Y: -1, Z: 0}, // SE
	{X: 0, Y: -1, Z: 1}, // S
	{X: -1, Y: 0, Z: 1}, // SW
	{X: -1, Y: 1, Z: 0}, // NW
}

// Vector returns the unit displacement for d.
func (d Direction) Vector() Position {
	return vectors[d]
}

// Next returns the direction following d in enumeration order. The second
// result is false for NorthWest, which has no successor.
func (d Direction) Next() (Direction, bool) {
	if d >= NorthWest {
		return d, false
	}
	return d + 1, true
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + 3) % 6
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case NorthWest:
		return "NW"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Position is a cube coordinate. X+Y+Z is always 0.
type Position struct {
	X, Y, Z int
}

// New returns the position (x, y, z). It panics if the coordinates are not
// on the x+y+z=0 plane.
func New(x, y, z int) Position {
	if x+y+z != 0 {
		panic(fmt.Sprintf("hex: invalid cube coordinate (%d,%d,%d)", x, y, z))
	}
	return Position{X: x, Y: y, Z: z}
}

// Origin returns (0,0,0).
func Origin() Position {
	return Position{}
}

// Neighbor returns the adjacent position in direction d.
func (p Position) Neighbor(d Direction) Position {
	return p.Translate(d.Vector())
}

// Translate adds v to p.
func (p Position) Translate(v Position) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Amplify scales p by n.
func (p Position) Amplify(n int) Position {
	return Position{X: p.X * n, Y: p.Y * n, Z: p.Z * n}
}

// Negate returns -p.
func (p Position) Negate() Position {
	return Position{X: -p.X, Y: -p.Y, Z: -p.Z}
}

// Around returns the six neighbors of p in direction order.
func (p Position) Around() [6]Position {
	var out [6]Position
	for i, d := range Directions {
		out[i] = p.Neighbor(d)
	}
	return out
}

// Distance returns the number of steps between p and o.
func (p Position) Distance(o Position) int {
	return (abs(p.X-o.X) + abs(p.Y-o.Y) + abs(p.Z-o.Z)) / 2
}

// IsNeighbor reports whether o is one step away from p.
func (p Position) IsNeighbor(o Position) bool {
	return p.Distance(o) == 1
}

// Offset converts p to odd-q offset coordinates.
func (p Position) Offset() OffsetPos {
	return OffsetPos{
		Col: p.X,
		Row: p.Z + (p.X-(p.X&1))/2,
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// OffsetPos is a column/row position used for 2D storage.
type OffsetPos struct {
	Col, Row int
}

// Position converts o back to cube coordinates.
func (o OffsetPos) Position() Position {
	x := o.Col
	z := o.Row - (o.Col-(o.Col&1))/2
	return Position{X: x, Y: -x - z, Z: z}
}

func (o OffsetPos) String() string {
	return fmt.Sprintf("%d:%d", o.Col, o.Row)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
