package mkbsc

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// TreeNode is one node of an epistemic tree. Its ID is a content hash
// over the node's own (label, player) pair and the labeled chain of
// ancestors back to the root, so two subtrees fold into the same node
// exactly when their full ancestor chains match, and ids are stable
// across runs regardless of memory layout.
type TreeNode struct {
	ID     string
	Label  string
	Player int

	parent   *TreeNode
	children []*TreeNode
}

// Children returns the child nodes in construction order, which is
// deterministic because knowledge sets iterate canonically.
func (n *TreeNode) Children() []*TreeNode {
	return append([]*TreeNode(nil), n.children...)
}

// Tree is the canonicalized epistemic tree of a single player, rooted
// at a nested knowledge state. Shared subtrees are folded, so it is a
// DAG rendered as a tree.
type Tree struct {
	player int
	root   *TreeNode
	nodes  map[string]*TreeNode
}

// EpistemicTree builds the epistemic tree of the given player rooted at
// s. Each node is labeled with the set of base-level possibilities it
// represents; children are the opponent-indexed knowledge states one
// level down. Base states have no tree.
func EpistemicTree(s *State, player int) (*Tree, error) {
	if s.IsBase() {
		return nil, fmt.Errorf("%w: base state %q has no epistemic tree", ErrArityMismatch, s.label)
	}
	if player < 0 || player >= s.Arity() {
		return nil, fmt.Errorf("%w: player %d out of range for %d players", ErrArityMismatch, player, s.Arity())
	}
	t := &Tree{player: player, nodes: make(map[string]*TreeNode)}
	root, err := t.build(s, player, nil)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

// Trees canonicalizes every player's tree for s. The per-player builds
// are independent over read-only data, so they run concurrently.
func Trees(s *State) ([]*Tree, error) {
	if s.IsBase() {
		return nil, fmt.Errorf("%w: base state %q has no epistemic trees", ErrArityMismatch, s.label)
	}
	trees := make([]*Tree, s.Arity())
	var eg errgroup.Group
	for p := 0; p < s.Arity(); p++ {
		p := p
		eg.Go(func() error {
			t, err := EpistemicTree(s, p)
			trees[p] = t
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

// Player returns which player's knowledge the tree describes.
func (t *Tree) Player() int { return t.player }

// Root returns the root node.
func (t *Tree) Root() *TreeNode { return t.root }

// Len returns the number of distinct nodes after folding.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) build(s *State, player int, parent *TreeNode) (*TreeNode, error) {
	members := s.Project(player).members
	label, err := possibilityLabel(members)
	if err != nil {
		return nil, err
	}
	id := nodeID(parent, label, player)
	node, ok := t.nodes[id]
	if !ok {
		node = &TreeNode{ID: id, Label: label, Player: player, parent: parent}
		t.nodes[id] = node
		if parent != nil {
			parent.children = append(parent.children, node)
		}
	}
	if !members[0].IsBase() {
		for _, m := range members {
			for q := 0; q < m.Arity(); q++ {
				if q == player {
					continue
				}
				if _, err := t.build(m, q, node); err != nil {
					return nil, err
				}
			}
		}
	}
	return node, nil
}

// possibilityLabel renders the base-level possibility set of a
// knowledge set's members.
func possibilityLabel(members []*State) (string, error) {
	var base Set
	if members[0].IsBase() {
		base = NewSet(members...)
	} else {
		for _, m := range members {
			mb, err := m.ConsistentBase()
			if err != nil {
				return "", err
			}
			base = base.Union(mb)
		}
	}
	labels := make([]string, 0, base.Len())
	for _, b := range base.members {
		labels = append(labels, b.Label())
	}
	return "{" + strings.Join(labels, ", ") + "}", nil
}

// nodeID hashes the (label, player) ancestor chain plus the node's own
// pair. SHA-1 keeps ids short and stable; collisions are not a concern
// at these sizes.
func nodeID(parent *TreeNode, label string, player int) string {
	var chain []string
	for n := parent; n != nil; n = n.parent {
		chain = append(chain, n.Label+strconv.Itoa(n.Player))
	}
	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		b.WriteString(chain[i])
	}
	b.WriteString(label)
	b.WriteString(strconv.Itoa(player))
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// NodesAtDepth returns the nodes exactly depth levels below the root.
func (t *Tree) NodesAtDepth(depth int) []*TreeNode {
	level := []*TreeNode{t.root}
	for d := 0; d < depth; d++ {
		var next []*TreeNode
		for _, n := range level {
			next = append(next, n.children...)
		}
		level = next
	}
	return level
}

// RecursiveAtDepth reports whether the knowledge hierarchy at s has
// stopped producing new distinctions by the given tree depth: for every
// player's tree, every node at that depth must have a structurally
// identical subtree rooted at some strictly shallower node. This is the
// tree-level counterpart of the graph isomorphism fixed-point test.
func RecursiveAtDepth(s *State, depth int) (bool, error) {
	trees, err := Trees(s)
	if err != nil {
		return false, err
	}
	for _, t := range trees {
		for _, n := range t.NodesAtDepth(depth) {
			if !t.hasRecursiveAncestor(n, depth) {
				return false, nil
			}
		}
	}
	return true, nil
}

func (t *Tree) hasRecursiveAncestor(n *TreeNode, depth int) bool {
	for d := 0; d < depth; d++ {
		for _, cand := range t.NodesAtDepth(d) {
			if subtreeEqual(n, cand) {
				return true
			}
		}
	}
	return false
}

// subtreeEqual compares two subtrees in breadth-first lockstep. The
// comparison succeeds as soon as either side bottoms out, so a shallow
// subtree matches a deeper one that agrees on every level both have.
func subtreeEqual(a, b *TreeNode) bool {
	qa := []*TreeNode{a}
	qb := []*TreeNode{b}
	for len(qa) > 0 && len(qb) > 0 {
		ca, cb := qa[0], qb[0]
		qa, qb = qa[1:], qb[1:]
		if ca.Label != cb.Label || ca.Player != cb.Player {
			return false
		}
		childrenA := sortedChildren(ca)
		childrenB := sortedChildren(cb)
		if len(childrenA) == 0 || len(childrenB) == 0 {
			return true
		}
		if len(childrenA) != len(childrenB) {
			return false
		}
		qa = append(qa, childrenA...)
		qb = append(qb, childrenB...)
	}
	return true
}

func sortedChildren(n *TreeNode) []*TreeNode {
	out := n.Children()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Player != out[j].Player {
			return out[i].Player < out[j].Player
		}
		return out[i].Label < out[j].Label
	})
	return out
}
