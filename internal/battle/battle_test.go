package battle

import (
	"context"
	"testing"
	"time"

	"github.com/hexfront/tactics/internal/combat"
	"github.com/hexfront/tactics/internal/terrain"
	"github.com/hexfront/tactics/internal/units"
	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type minRand struct{}

func (minRand) IntN(int) int { return 0 }

type journal struct {
	moves   []core.MoveEvent
	combats []core.CombatEvent
}

func (j *journal) RecordMove(e *core.MoveEvent) error {
	j.moves = append(j.moves, *e)
	return nil
}

func (j *journal) RecordCombat(e *core.CombatEvent) error {
	j.combats = append(j.combats, *e)
	return nil
}

type points struct {
	matches []string
}

func (p *points) RecordMove(match string, _ core.MoveEvent) error {
	p.matches = append(p.matches, match)
	return nil
}

func (p *points) RecordCombat(match string, _ core.CombatEvent) error {
	p.matches = append(p.matches, match)
	return nil
}

type counters struct {
	moves, combats int
}

func (c *counters) RecordMove(context.Context, core.MoveEvent)     { c.moves++ }
func (c *counters) RecordCombat(context.Context, core.CombatEvent) { c.combats++ }

var fixedTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	m   *terrain.Map
	reg *units.Registry
	j   *journal
	b   *Battle
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		m:   terrain.Filled(10, 10, terrain.Plain),
		reg: units.NewRegistry(),
		j:   &journal{},
	}
	opts = append([]Option{
		WithRand(minRand{}),
		WithRecorder(f.j),
		WithClock(func() time.Time { return fixedTime }),
	}, opts...)
	f.b = New(f.m, f.reg, opts...)
	return f
}

func (f *fixture) add(t *testing.T, u core.Unit) core.Unit {
	t.Helper()
	if u.Strength == 0 && u.RangedStrength == 0 {
		u.Strength = 8
	}
	if u.HP == 0 {
		u.HP = 100
	}
	require.NoError(t, f.reg.Add(&u))
	return u
}

func at(col, row int) hex.Position {
	return hex.OffsetPos{Col: col, Row: row}.Position()
}

func TestReachable_UnknownUnit(t *testing.T) {
	f := newFixture()
	_, err := f.b.Reachable(42)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestMoveUnitTo_PlainMove(t *testing.T) {
	f := newFixture()
	u := f.add(t, core.Unit{Name: "Scout", Owner: "red", Pos: at(4, 4), Movements: 2})
	dest := u.Pos.Neighbor(hex.South)

	p, err := f.b.MoveUnitTo(context.Background(), u.ID, dest)
	require.NoError(t, err)
	assert.Nil(t, p)

	got := f.reg.Unit(u.ID)
	assert.Equal(t, dest, got.Pos)
	assert.Equal(t, 1, got.Movements)

	require.Len(t, f.j.moves, 1)
	e := f.j.moves[0]
	assert.Equal(t, fixedTime, e.Time)
	assert.Equal(t, 1, e.Turn)
	assert.Equal(t, []hex.Position{u.Pos, dest}, e.Path)
	assert.Equal(t, 1, e.Cost)
	assert.Equal(t, 1, e.Deducted)
	assert.False(t, e.Exhausted)
}

func TestMoveUnitTo_HillUsesAllMovement(t *testing.T) {
	f := newFixture()
	u := f.add(t, core.Unit{Name: "Scout", Owner: "red", Pos: at(4, 4), Movements: 2})
	hill := u.Pos.Neighbor(hex.NorthEast)
	require.True(t, f.m.Set(hill, terrain.Hill))

	_, err := f.b.MoveUnitTo(context.Background(), u.ID, hill)
	require.NoError(t, err)
	assert.Equal(t, 0, f.reg.Unit(u.ID).Movements)
	assert.True(t, f.j.moves[0].Exhausted)

	reach, err := f.b.Reachable(u.ID)
	require.NoError(t, err)
	assert.Empty(t, reach)

	_, err = f.b.MoveUnitTo(context.Background(), u.ID, hill.Neighbor(hex.North))
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestMoveUnitTo_Errors(t *testing.T) {
	f := newFixture()
	u := f.add(t, core.Unit{Name: "Scout", Owner: "red", Pos: at(4, 4), Movements: 2})
	ally := f.add(t, core.Unit{Name: "Guard", Owner: "red", Pos: u.Pos.Neighbor(hex.South), Movements: 2})

	_, err := f.b.MoveUnitTo(context.Background(), 99, at(0, 0))
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = f.b.MoveUnitTo(context.Background(), u.ID, at(9, 9))
	assert.ErrorIs(t, err, ErrUnreachable)

	_, err = f.b.MoveUnitTo(context.Background(), u.ID, ally.Pos)
	assert.ErrorIs(t, err, ErrUnreachable)

	assert.Empty(t, f.j.moves)
	assert.Equal(t, u.Pos, f.reg.Unit(u.ID).Pos)
}

func TestAttack_PreviewFromStagingCell(t *testing.T) {
	f := newFixture()
	att := f.add(t, core.Unit{Name: "Warrior", Owner: "red", Pos: at(4, 4), Movements: 2})
	staging := att.Pos.Neighbor(hex.North)
	def := f.add(t, core.Unit{Name: "Brute", Owner: "blue", Pos: staging.Neighbor(hex.North), Movements: 2})

	p, err := f.b.MoveUnitTo(context.Background(), att.ID, def.Pos)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, att.ID, p.Attacker())
	assert.Equal(t, def.ID, p.Defender())
	assert.Equal(t, staging, p.Route.Staging())
	assert.Equal(t, staging, p.Engagement.Attacker.Pos)
	assert.Equal(t, combat.Range{Min: 40, Max: 70}, p.Engagement.ToDefender)
	assert.Equal(t, combat.Range{Min: 40, Max: 70}, p.Engagement.ToAttacker)

	// nothing moves until the attack is confirmed
	assert.Equal(t, att.Pos, f.reg.Unit(att.ID).Pos)
	assert.Equal(t, 2, f.reg.Unit(att.ID).Movements)
}

func TestConfirm_BothSurvive(t *testing.T) {
	c := &counters{}
	s := &points{}
	f := newFixture(WithMetrics(c), WithStats(s, "Skirmish at Dawn"))
	att := f.add(t, core.Unit{Name: "Warrior", Owner: "red", Pos: at(4, 4), Movements: 2})
	staging := att.Pos.Neighbor(hex.North)
	def := f.add(t, core.Unit{Name: "Brute", Owner: "blue", Pos: staging.Neighbor(hex.North), Movements: 2})

	p, err := f.b.MoveUnitTo(context.Background(), att.ID, def.Pos)
	require.NoError(t, err)
	res, err := f.b.Confirm(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 40, res.Outcome.AttackerDamage)
	assert.Equal(t, 40, res.Outcome.DefenderDamage)
	assert.False(t, res.Outcome.Captured)

	a := f.reg.Unit(att.ID)
	assert.Equal(t, staging, a.Pos)
	assert.Equal(t, 60, a.HP)
	assert.Equal(t, 0, a.Movements)
	d := f.reg.Unit(def.ID)
	assert.Equal(t, def.Pos, d.Pos)
	assert.Equal(t, 60, d.HP)

	require.Len(t, f.j.combats, 1)
	e := f.j.combats[0]
	assert.Equal(t, string(combat.Defeat), e.Verdict)
	assert.Equal(t, staging, e.Attacker.Pos)
	assert.Equal(t, 100, e.Attacker.StartHP)
	assert.Equal(t, 60, e.Defender.FinalHP)
	assert.Equal(t, 40, e.Defender.DamageMin)
	assert.Equal(t, 70, e.Defender.DamageMax)
	assert.Equal(t, 1, e.Turn)

	assert.Equal(t, 1, c.combats)
	assert.Equal(t, []string{"Skirmish at Dawn"}, s.matches)
}

func TestConfirm_Capture(t *testing.T) {
	f := newFixture()
	att := f.add(t, core.Unit{Name: "Warrior", Owner: "red", Pos: at(4, 4), Movements: 2})
	def := f.add(t, core.Unit{Name: "Brute", Owner: "blue", Pos: att.Pos.Neighbor(hex.SouthEast), HP: 30, Movements: 2})

	p, err := f.b.MoveUnitTo(context.Background(), att.ID, def.Pos)
	require.NoError(t, err)
	res, err := f.b.Confirm(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, res.Outcome.Captured)
	assert.Equal(t, string(combat.DecisiveVictory), res.Event.Verdict)

	_, alive := f.reg.Lookup(def.ID)
	assert.False(t, alive)
	a := f.reg.Unit(att.ID)
	assert.Equal(t, def.Pos, a.Pos)
	assert.Equal(t, 0, a.Movements)
	assert.Equal(t, 1, f.reg.Len())
}

func TestConfirm_RangedTakesNoDamage(t *testing.T) {
	f := newFixture()
	att := f.add(t, core.Unit{Name: "Archer", Owner: "red", Pos: at(4, 4), Strength: 5, RangedStrength: 8, Movements: 2})
	def := f.add(t, core.Unit{Name: "Brute", Owner: "blue", Pos: att.Pos.Neighbor(hex.South), Movements: 2})

	p, err := f.b.MoveUnitTo(context.Background(), att.ID, def.Pos)
	require.NoError(t, err)
	assert.True(t, p.Engagement.Ranged)
	assert.Equal(t, combat.Range{}, p.Engagement.ToAttacker)

	res, err := f.b.Confirm(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Outcome.AttackerDamage)
	assert.Equal(t, 100, f.reg.Unit(att.ID).HP)
	assert.Equal(t, att.Pos, f.reg.Unit(att.ID).Pos)
	assert.Equal(t, 0, f.reg.Unit(att.ID).Movements)
	assert.True(t, res.Event.Ranged)
}

func TestAttack_ZeroStrength(t *testing.T) {
	f := newFixture()
	att := f.add(t, core.Unit{Name: "Warrior", Owner: "red", Pos: at(4, 4), Movements: 2})
	def := f.add(t, core.Unit{Name: "Settler", Owner: "blue", Pos: att.Pos.Neighbor(hex.South), Strength: -1, Movements: 2})

	_, err := f.b.MoveUnitTo(context.Background(), att.ID, def.Pos)
	assert.ErrorIs(t, err, combat.ErrZeroStrength)
}

func TestPending_Stale(t *testing.T) {
	setup := func(t *testing.T) (*fixture, *Pending) {
		f := newFixture()
		att := f.add(t, core.Unit{Name: "Warrior", Owner: "red", Pos: at(4, 4), Movements: 2})
		def := f.add(t, core.Unit{Name: "Brute", Owner: "blue", Pos: att.Pos.Neighbor(hex.South), Movements: 2})
		p, err := f.b.MoveUnitTo(context.Background(), att.ID, def.Pos)
		require.NoError(t, err)
		return f, p
	}

	t.Run("withdrawn", func(t *testing.T) {
		f, p := setup(t)
		require.NoError(t, f.b.Withdraw(p))
		_, err := f.b.Confirm(context.Background(), p)
		assert.ErrorIs(t, err, ErrStalePending)
		assert.ErrorIs(t, f.b.Withdraw(p), ErrStalePending)
		assert.Empty(t, f.j.combats)
	})

	t.Run("confirmed twice", func(t *testing.T) {
		f, p := setup(t)
		_, err := f.b.Confirm(context.Background(), p)
		require.NoError(t, err)
		_, err = f.b.Confirm(context.Background(), p)
		assert.ErrorIs(t, err, ErrStalePending)
		assert.Len(t, f.j.combats, 1)
	})

	t.Run("new turn", func(t *testing.T) {
		f, p := setup(t)
		f.b.NewTurn()
		_, err := f.b.Confirm(context.Background(), p)
		assert.ErrorIs(t, err, ErrStalePending)
	})

	t.Run("defender moved", func(t *testing.T) {
		f, p := setup(t)
		require.NoError(t, f.reg.SetPosition(p.Defender(), at(8, 8)))
		_, err := f.b.Confirm(context.Background(), p)
		assert.ErrorIs(t, err, ErrStalePending)
	})

	t.Run("nil", func(t *testing.T) {
		f, _ := setup(t)
		_, err := f.b.Confirm(context.Background(), nil)
		assert.ErrorIs(t, err, ErrStalePending)
	})
}

func TestNewTurn_RefreshesMovement(t *testing.T) {
	f := newFixture(WithMovementPoints(3))
	u := f.add(t, core.Unit{Name: "Scout", Owner: "red", Pos: at(4, 4), Movements: 0})

	assert.Equal(t, 1, f.b.Turn())
	assert.Equal(t, 2, f.b.NewTurn())
	assert.Equal(t, 3, f.reg.Unit(u.ID).Movements)

	next, ok := f.b.NextActive(0, "red")
	require.True(t, ok)
	assert.Equal(t, u.ID, next.ID)

	_, ok = f.b.NextActive(0, "blue")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	m := terrain.Filled(3, 2, terrain.Plain)
	reg := units.NewRegistry()
	u := core.Unit{Name: "Archer", Owner: "red", Pos: at(1, 0), Strength: 5, HP: 100}
	require.NoError(t, reg.Add(&u))

	b := New(m, reg, WithRand(minRand{}))
	assert.Equal(t, "'A'\n'''\n", b.Render())
}
