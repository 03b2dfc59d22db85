package mkbsc

import (
	"fmt"
	"strings"
)

// Node describes one epistemic tree node to an external renderer.
type Node struct {
	ID     string
	Label  string
	Player int
}

// Edge describes one epistemic tree edge. Player is the child's player
// index, which labels the edge.
type Edge struct {
	From   string
	To     string
	Player int
}

// Nodes returns the tree's nodes in breadth-first order.
func (t *Tree) Nodes() []Node {
	var out []Node
	queue := []*TreeNode{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, Node{ID: n.ID, Label: n.Label, Player: n.Player})
		queue = append(queue, n.children...)
	}
	return out
}

// Edges returns the tree's edges in breadth-first order.
func (t *Tree) Edges() []Edge {
	var out []Edge
	queue := []*TreeNode{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.children {
			out = append(out, Edge{From: n.ID, To: c.ID, Player: c.Player})
		}
		queue = append(queue, n.children...)
	}
	return out
}

// DOT renders the tree in Graphviz DOT form.
func (t *Tree) DOT() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph etree_player%d {\n", t.player)
	sb.WriteString("  node [shape=box];\n")
	for _, n := range t.Nodes() {
		fmt.Fprintf(&sb, "  %q [label=%q];\n", n.ID[:8], n.Label)
	}
	for _, e := range t.Edges() {
		fmt.Fprintf(&sb, "  %q -> %q [label=\"%d\"];\n", e.From[:8], e.To[:8], e.Player)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// GameDOT renders the game graph in Graphviz DOT form, with state
// labels produced by Format under the given options.
func GameDOT(g *Game, opts FormatOptions) string {
	var sb strings.Builder
	sb.WriteString("digraph game {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=ellipse];\n\n")
	sb.WriteString("  start [shape=point];\n")
	fmt.Fprintf(&sb, "  start -> s%d;\n\n", g.index[g.initial.key])
	for i, s := range g.states {
		fmt.Fprintf(&sb, "  s%d [label=%q];\n", i, Format(s, opts))
	}
	sb.WriteString("\n")
	for _, t := range g.transitions {
		fmt.Fprintf(&sb, "  s%d -> s%d [label=%q];\n",
			g.index[t.From.key], g.index[t.To.key], t.Via.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}
