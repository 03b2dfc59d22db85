package mkbsc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameDOT(t *testing.T) {
	g := mustGame(holeGameDef())
	dot := GameDOT(g, FormatOptions{Style: StyleCompact})

	assert.True(t, strings.HasPrefix(dot, "digraph game {"))
	assert.Contains(t, dot, "start [shape=point];")
	assert.Contains(t, dot, `start -> s0;`)
	assert.Contains(t, dot, `[label="start"]`)
	assert.Contains(t, dot, `[label="no hole"]`)
	assert.Contains(t, dot, `[label="(G, G)"]`)
	// One label per state and per transition, one arrow per transition
	// plus the start marker.
	assert.Equal(t, g.NumStates()+len(g.Transitions()), strings.Count(dot, "[label="))
	assert.Equal(t, len(g.Transitions())+1, strings.Count(dot, " -> s"))
}

func TestTreeNodesAndEdges(t *testing.T) {
	g2 := twiceTransformed(t)
	s := g2.Successors(g2.Initial(), JointAction{"G", "G"}).States()[0]
	tree, err := EpistemicTree(s, 0)
	require.NoError(t, err)

	nodes := tree.Nodes()
	edges := tree.Edges()
	require.NotEmpty(t, nodes)
	assert.Equal(t, tree.Len(), len(nodes))
	assert.Len(t, edges, len(nodes)-1)

	// Breadth-first: the root comes first and every edge source appears
	// as a node before its target.
	assert.Equal(t, "{hole, no hole}", nodes[0].Label)
	seen := map[string]bool{nodes[0].ID: true}
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, e := range edges {
		assert.True(t, seen[e.From], "edge from unseen node %s", e.From)
		seen[e.To] = true
		assert.Equal(t, byID[e.To].Player, e.Player)
	}
}

func TestTreeDOT(t *testing.T) {
	g2 := twiceTransformed(t)
	s := g2.Successors(g2.Initial(), JointAction{"G", "G"}).States()[0]
	tree, err := EpistemicTree(s, 1)
	require.NoError(t, err)

	dot := tree.DOT()
	assert.True(t, strings.HasPrefix(dot, "digraph etree_player1 {"))
	for _, n := range tree.Nodes() {
		assert.Contains(t, dot, n.ID[:8])
		assert.Contains(t, dot, `[label="`+n.Label+`"]`)
	}
}
