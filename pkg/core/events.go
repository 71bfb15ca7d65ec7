// pkg/core/events.go
package core

import (
	"time"

	"github.com/hexfront/tactics/pkg/hex"
)

// Match describes a recorded skirmish.
type Match struct {
	ID        uint
	Name      string
	MapName   string
	MapWidth  int
	MapHeight int
	StartTime time.Time
	Seed      uint64
}

// MoveEvent is a completed non-combat move.
type MoveEvent struct {
	Time      time.Time
	Turn      int
	UnitID    UnitID
	UnitName  string
	Owner     Owner
	Path      []hex.Position
	Cost      int
	Deducted  int
	Exhausted bool
}

// From returns the starting cell.
func (e MoveEvent) From() hex.Position {
	return e.Path[0]
}

// To returns the destination cell.
func (e MoveEvent) To() hex.Position {
	return e.Path[len(e.Path)-1]
}

// CombatModifier is a recorded strength modifier.
type CombatModifier struct {
	Kind    string `json:"kind"`
	Percent int    `json:"percent"`
}

// CombatSide is one participant of a recorded engagement.
type CombatSide struct {
	UnitID    UnitID
	Name      string
	Owner     Owner
	Pos       hex.Position
	Strength  float64
	StartHP   int
	FinalHP   int
	DamageMin int
	DamageMax int
	Damage    int
	Modifiers []CombatModifier
}

// CombatEvent is a resolved engagement.
type CombatEvent struct {
	Time     time.Time
	Turn     int
	Ranged   bool
	Attacker CombatSide
	Defender CombatSide
	Captured bool
	Verdict  string
}
