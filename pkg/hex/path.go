package hex

import "strings"

// Path is a non-empty sequence of neighboring positions. The first position
// is the origin and is never removed.
type Path struct {
	stack []Position
}

// NewPath returns a path holding only origin.
func NewPath(origin Position) Path {
	return Path{stack: []Position{origin}}
}

// PathOf builds a path from explicit positions. It panics if positions is
// empty or two consecutive entries are not neighbors.
func PathOf(positions ...Position) Path {
	if len(positions) == 0 {
		panic("hex: empty path")
	}
	p := NewPath(positions[0])
	for _, pos := range positions[1:] {
		if !p.To().IsNeighbor(pos) {
			panic("hex: path positions " + p.To().String() + " and " + pos.String() + " are not neighbors")
		}
		p.push(pos)
	}
	return p
}

// Origin returns the first position.
func (p Path) Origin() Position {
	return p.stack[0]
}

// To returns the current endpoint.
func (p Path) To() Position {
	return p.stack[len(p.stack)-1]
}

// Len returns the number of steps, not counting the origin.
func (p Path) Len() int {
	return len(p.stack) - 1
}

// At returns the i-th position, 0 being the origin.
func (p Path) At(i int) Position {
	return p.stack[i]
}

// Positions returns a copy of every position, origin first.
func (p Path) Positions() []Position {
	out := make([]Position, len(p.stack))
	copy(out, p.stack)
	return out
}

// Clone returns a path that shares no storage with p.
func (p Path) Clone() Path {
	return Path{stack: p.Positions()}
}

func (p Path) String() string {
	parts := make([]string, len(p.stack))
	for i, pos := range p.stack {
		parts[i] = pos.String()
	}
	return strings.Join(parts, " > ")
}

func (p *Path) push(pos Position) {
	p.stack = append(p.stack, pos)
}

func (p *Path) pop() {
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *Path) replaceLast(pos Position) {
	p.stack[len(p.stack)-1] = pos
}
