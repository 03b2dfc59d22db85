package mkbsc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relabeled returns the hole game with every state label rewritten, so
// the result is isomorphic but shares no labels with the original.
func relabeledHoleDef() GameDef {
	def := holeGameDef()
	rename := map[string]string{
		"start": "s0", "hole": "s1", "no hole": "s2", "win": "s3", "lose": "s4",
	}
	for i := range def.States {
		def.States[i] = rename[def.States[i]]
	}
	def.Initial = rename[def.Initial]
	for i := range def.Transitions {
		def.Transitions[i].From = rename[def.Transitions[i].From]
		def.Transitions[i].To = rename[def.Transitions[i].To]
	}
	for p := range def.Observations {
		for c := range def.Observations[p] {
			for i := range def.Observations[p][c] {
				def.Observations[p][c][i] = rename[def.Observations[p][c][i]]
			}
		}
	}
	return def
}

func TestIsomorphicReflexive(t *testing.T) {
	g := mustGame(holeGameDef())
	iso, err := Isomorphic(g, g, 0)
	require.NoError(t, err)
	assert.True(t, iso)
}

func TestIsomorphicRelabeled(t *testing.T) {
	a := mustGame(holeGameDef())
	b := mustGame(relabeledHoleDef())
	iso, err := Isomorphic(a, b, 0)
	require.NoError(t, err)
	assert.True(t, iso, "relabeling states must not matter")
}

func TestNotIsomorphic(t *testing.T) {
	a := mustGame(holeGameDef())

	// Different observation structure: player 0 fully observes.
	b := mustGame(fullyObservableHoleDef())
	iso, err := Isomorphic(a, b, 0)
	require.NoError(t, err)
	assert.False(t, iso)

	// Different transition structure: drop a branch.
	def := holeGameDef()
	def.Transitions = def.Transitions[:len(def.Transitions)-1]
	c := mustGame(def)
	iso, err = Isomorphic(a, c, 0)
	require.NoError(t, err)
	assert.False(t, iso)

	// Different initial state.
	def = holeGameDef()
	def.Initial = "hole"
	d := mustGame(def)
	iso, err = Isomorphic(a, d, 0)
	require.NoError(t, err)
	assert.False(t, iso)
}

// TestIsoBudgetExhausted verifies that running out of budget is
// reported as inconclusive, not as a verdict.
func TestIsoBudgetExhausted(t *testing.T) {
	a := mustGame(holeGameDef())
	b := mustGame(relabeledHoleDef())
	_, err := Isomorphic(a, b, 1)
	assert.ErrorIs(t, err, ErrIsoBudget)
}

func TestIterateUntilFixedHoleGame(t *testing.T) {
	g0 := mustGame(holeGameDef())
	fixed, level, err := IterateUntilFixed(context.Background(), g0, IterateOptions{MaxLevels: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, level, "the hole game stabilizes after one application")
	assert.Equal(t, 1, fixed.Level())
	assert.Equal(t, 6, fixed.NumStates())
}

func TestIterateUntilFixedImmediate(t *testing.T) {
	g0 := mustGame(fullyObservableHoleDef())
	fixed, level, err := IterateUntilFixed(context.Background(), g0, IterateOptions{MaxLevels: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, level)
	assert.Same(t, g0, fixed)
}

func TestIterateNoFixedPoint(t *testing.T) {
	g0 := mustGame(holeGameDef())
	last, level, err := IterateUntilFixed(context.Background(), g0, IterateOptions{MaxLevels: 1})
	assert.ErrorIs(t, err, ErrNoFixedPoint)
	assert.Equal(t, 1, level)
	require.NotNil(t, last, "the last computed level is returned for explicit acceptance")
	assert.Equal(t, 1, last.Level())
}

func TestIterateRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := IterateUntilFixed(ctx, mustGame(holeGameDef()), IterateOptions{MaxLevels: 5})
	assert.ErrorIs(t, err, context.Canceled)
}
