package terrain

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

var (
	// ErrInconsistentMap is returned when tile data does not fill width*height.
	ErrInconsistentMap = errors.New("inconsistent terrain map data")
	// ErrEmptyMap is returned when a map file holds no tile.
	ErrEmptyMap = errors.New("empty terrain map")
	// ErrRaggedMap is returned when map lines differ in width.
	ErrRaggedMap = errors.New("terrain map lines differ in width")
)

// Map is a rectangular terrain grid stored in odd-q offset coordinates,
// rows first, with (0,0) at the top-left corner.
type Map struct {
	name   string
	width  int
	height int
	data   []Terrain
}

var _ core.TerrainQuery = (*Map)(nil)

// New builds a map from row-major tile data.
func New(width, height int, data []Terrain) (*Map, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d tiles", ErrInconsistentMap, width, height, len(data))
	}
	out := make([]Terrain, len(data))
	copy(out, data)
	return &Map{width: width, height: height, data: out}, nil
}

// Filled returns a width x height map covered with t.
func Filled(width, height int, t Terrain) *Map {
	data := make([]Terrain, width*height)
	for i := range data {
		data[i] = t
	}
	m, err := New(width, height, data)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Map) Name() string { return m.name }
func (m *Map) Width() int   { return m.width }
func (m *Map) Height() int  { return m.height }

// WithName sets the display name and returns m.
func (m *Map) WithName(name string) *Map {
	m.name = name
	return m
}

// Contains reports whether pos lies on the grid.
func (m *Map) Contains(pos hex.Position) bool {
	o := pos.Offset()
	return o.Col >= 0 && o.Row >= 0 && o.Col < m.width && o.Row < m.height
}

// At returns the terrain at pos, OutOfBounds when pos is off the grid.
func (m *Map) At(pos hex.Position) Terrain {
	if !m.Contains(pos) {
		return OutOfBounds
	}
	o := pos.Offset()
	return m.data[o.Row*m.width+o.Col]
}

// Set changes the terrain at pos. It reports false when pos is off the grid.
func (m *Map) Set(pos hex.Position, t Terrain) bool {
	if !m.Contains(pos) {
		return false
	}
	o := pos.Offset()
	m.data[o.Row*m.width+o.Col] = t
	return true
}

func (m *Map) IsPassable(pos hex.Position) bool {
	return m.At(pos).IsPassable()
}

func (m *Map) MovementCost(pos hex.Position) int {
	return m.At(pos).MovementCost()
}

func (m *Map) DefenseModifier(pos hex.Position) int {
	return m.At(pos).DefenseModifier()
}

// Tiles iterates over every tile, rows first.
func (m *Map) Tiles() iter.Seq2[hex.Position, Terrain] {
	return func(yield func(hex.Position, Terrain) bool) {
		for i, t := range m.data {
			pos := hex.OffsetPos{Col: i % m.width, Row: i / m.width}.Position()
			if !yield(pos, t) {
				return
			}
		}
	}
}

// FirstPassable returns the first passable tile in row order.
func (m *Map) FirstPassable() (hex.Position, bool) {
	for pos, t := range m.Tiles() {
		if t.IsPassable() {
			return pos, true
		}
	}
	return hex.Position{}, false
}

// PathCost sums the movement cost of every cell after the origin.
func (m *Map) PathCost(p hex.Path) int {
	cost := 0
	for i := 1; i <= p.Len(); i++ {
		cost += m.MovementCost(p.At(i))
	}
	return cost
}

// String renders the map back to its text form.
func (m *Map) String() string {
	buf := make([]rune, 0, (m.width+1)*m.height)
	for i, t := range m.data {
		buf = append(buf, t.Symbol())
		if (i+1)%m.width == 0 {
			buf = append(buf, '\n')
		}
	}
	return string(buf)
}
