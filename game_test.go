package mkbsc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameValid(t *testing.T) {
	g, err := NewGame(holeGameDef())
	require.NoError(t, err)

	assert.Equal(t, 2, g.Players())
	assert.Equal(t, 0, g.Level())
	assert.Equal(t, 5, g.NumStates())
	assert.Equal(t, "start", g.Initial().Label())
	assert.Equal(t, []string{"G", "P", "D"}, g.Actions(1))

	succ := g.Successors(g.Initial(), JointAction{"G", "G"})
	require.Equal(t, 2, succ.Len())
	assert.True(t, succ.Contains(NewBaseState("hole")))
	assert.True(t, succ.Contains(NewBaseState("no hole")))
	assert.Equal(t, 0, g.Successors(g.Initial(), JointAction{"P", "P"}).Len())

	class, ok := g.ObservationClass(0, NewBaseState("hole"))
	require.True(t, ok)
	assert.True(t, class.Contains(NewBaseState("no hole")),
		"player 0 must not distinguish hole from no hole")
	class, ok = g.ObservationClass(1, NewBaseState("hole"))
	require.True(t, ok)
	assert.Equal(t, 1, class.Len(), "player 1 observes hole exactly")
}

func TestNewGameMalformed(t *testing.T) {
	base := holeGameDef

	cases := []struct {
		name   string
		mutate func(*GameDef)
	}{
		{"no players", func(d *GameDef) { d.Actions = nil; d.Observations = nil }},
		{"empty alphabet", func(d *GameDef) { d.Actions[0] = nil }},
		{"duplicate action", func(d *GameDef) { d.Actions[0] = []string{"G", "G", "P"} }},
		{"no states", func(d *GameDef) { d.States = nil }},
		{"duplicate state", func(d *GameDef) { d.States = append(d.States, "start") }},
		{"unknown initial", func(d *GameDef) { d.Initial = "nowhere" }},
		{"transition from unknown state", func(d *GameDef) {
			d.Transitions[0].From = "nowhere"
		}},
		{"transition to unknown state", func(d *GameDef) {
			d.Transitions[0].To = "nowhere"
		}},
		{"joint action arity", func(d *GameDef) {
			d.Transitions[0].Via = []string{"G"}
		}},
		{"action outside alphabet", func(d *GameDef) {
			d.Transitions[0].Via = []string{"G", "X"}
		}},
		{"partition count", func(d *GameDef) {
			d.Observations = d.Observations[:1]
		}},
		{"partition references unknown state", func(d *GameDef) {
			d.Observations[0][0] = []string{"nowhere"}
		}},
		{"state in two classes", func(d *GameDef) {
			d.Observations[1] = append(d.Observations[1], []string{"win"})
		}},
		{"partition misses a state", func(d *GameDef) {
			d.Observations[1] = d.Observations[1][:4]
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := base()
			tc.mutate(&def)
			_, err := NewGame(def)
			assert.ErrorIs(t, err, ErrMalformedGame)
		})
	}
}

func TestTransitionsDeduplicated(t *testing.T) {
	def := holeGameDef()
	def.Transitions = append(def.Transitions, def.Transitions[0])
	g, err := NewGame(def)
	require.NoError(t, err)
	assert.Len(t, g.Transitions(), 10, "duplicate triples collapse")
}

func TestJointActionEnumeration(t *testing.T) {
	g := mustGame(holeGameDef())
	joint := g.jointActions()
	require.Len(t, joint, 9)
	assert.Equal(t, JointAction{"G", "G"}, joint[0])
	assert.Equal(t, JointAction{"D", "D"}, joint[8])
}
