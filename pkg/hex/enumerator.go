package hex

// Enumerator walks every path of 0 to maxDepth steps rooted at an origin in
// depth-first pre-order. The walk behaves like a base-6 odometer over
// Directions: it extends with North while allowed, otherwise advances the
// last direction, popping exhausted levels until the root is reached.
//
// The caller may Prune after each Advance to skip the descendants of the
// path it just received.
type Enumerator struct {
	path     Path
	dirs     []Direction
	maxDepth int
	started  bool
	done     bool
	pruned   bool
}

// NewEnumerator returns an enumerator rooted at origin. It panics if
// maxDepth is negative.
//
// The length-0 root path is always produced, so a walk of depth d yields
// Σ 6^k paths for k in 0..d. A maxDepth of 0 therefore yields no moves: the
// root is its only path, and callers looking for destinations get none.
func NewEnumerator(origin Position, maxDepth int) *Enumerator {
	if maxDepth < 0 {
		panic("hex: negative enumeration depth")
	}
	return &Enumerator{
		path:     NewPath(origin),
		dirs:     make([]Direction, 0, maxDepth),
		maxDepth: maxDepth,
	}
}

// Advance moves to the next path. The returned Path is a view into the
// enumerator's state: it is valid until the next call to Advance and must be
// cloned to be kept. The second result is false once the walk is over.
func (e *Enumerator) Advance() (Path, bool) {
	if e.done {
		return Path{}, false
	}
	if !e.started {
		// root comes first
		e.started = true
		return e.path, true
	}

	pruned := e.pruned
	e.pruned = false
	if !pruned && len(e.dirs) < e.maxDepth {
		e.dirs = append(e.dirs, North)
		e.path.push(e.path.To().Neighbor(North))
		return e.path, true
	}

	for len(e.dirs) > 0 {
		last := len(e.dirs) - 1
		if next, ok := e.dirs[last].Next(); ok {
			e.dirs[last] = next
			e.path.replaceLast(e.path.At(last).Neighbor(next))
			return e.path, true
		}
		e.dirs = e.dirs[:last]
		e.path.pop()
	}

	e.done = true
	return Path{}, false
}

// Prune stops the walk from descending below the current path. Siblings
// and ancestors are unaffected. It panics if Advance was never called.
func (e *Enumerator) Prune() {
	if !e.started {
		panic("hex: Prune called before Advance")
	}
	if e.done {
		return
	}
	e.pruned = true
}

// Current returns the path produced by the last successful Advance. It
// panics if there is none.
func (e *Enumerator) Current() Path {
	if !e.started || e.done {
		panic("hex: no current path")
	}
	return e.path
}

// Depth returns the step count of the current path.
func (e *Enumerator) Depth() int {
	return len(e.dirs)
}
