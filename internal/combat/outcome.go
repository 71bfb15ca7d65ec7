package combat

// Revived tells which side, if any, was kept alive at 1 HP.
type Revived uint8

const (
	RevivedNone Revived = iota
	RevivedAttacker
	RevivedDefender
)

// Verdict summarizes an outcome from the attacker's point of view.
type Verdict string

const (
	CrushingDefeat  Verdict = "Crushing Defeat"
	DecisiveVictory Verdict = "Decisive Victory"
	Victory         Verdict = "Victory"
	Defeat          Verdict = "Defeat"
)

// Outcome is the settled result of an engagement.
type Outcome struct {
	AttackerDamage int
	DefenderDamage int
	AttackerHP     int
	DefenderHP     int
	// Captured is set when the defender died; the attacker takes its cell.
	Captured bool
	Revived  Revived
}

func (o Outcome) AttackerDead() bool { return o.AttackerHP == 0 }
func (o Outcome) DefenderDead() bool { return o.DefenderHP == 0 }

// Verdict classifies the outcome.
func (o Outcome) Verdict() Verdict {
	switch {
	case o.AttackerDead():
		return CrushingDefeat
	case o.DefenderDead():
		return DecisiveVictory
	case o.DefenderDamage > o.AttackerDamage:
		return Victory
	default:
		return Defeat
	}
}
