package mkbsc

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// State is a knowledge state: either a base-level state carrying an
// opaque label, or a nested state holding one knowledge set per player,
// each set containing states of the previous construction level.
//
// States are immutable once built. Equality is structural: two base
// states are equal iff their labels are equal, and two nested states
// are equal iff their per-player sets are equal as sets of recursively
// equal states. Every state carries a canonical key computed at
// construction, so equality and hashing never depend on object
// identity or insertion order.
type State struct {
	label string
	know  []Set // nil for base states
	key   string
	depth int
}

// NewBaseState creates a base-level state with the given label.
func NewBaseState(label string) *State {
	return &State{label: label, key: strconv.Quote(label)}
}

// NewState creates a nested state from one knowledge set per player.
// All member states across all sets must belong to the same level:
// identical arity and identical depth. Empty player sets are rejected
// as well, since a player always considers at least one state possible.
func NewState(know []Set) (*State, error) {
	if len(know) == 0 {
		return nil, fmt.Errorf("%w: no player knowledge sets", ErrArityMismatch)
	}
	arity, depth := -1, -1
	for p, k := range know {
		if k.Len() == 0 {
			return nil, fmt.Errorf("%w: player %d has an empty knowledge set", ErrArityMismatch, p)
		}
		for _, m := range k.members {
			if arity == -1 {
				arity, depth = m.Arity(), m.depth
				continue
			}
			if m.Arity() != arity || m.depth != depth {
				return nil, fmt.Errorf("%w: player %d references a state of different level", ErrArityMismatch, p)
			}
		}
	}
	var b strings.Builder
	b.WriteByte('(')
	for p, k := range know {
		if p > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k.id)
	}
	b.WriteByte(')')
	return &State{
		know:  append([]Set(nil), know...),
		key:   b.String(),
		depth: depth + 1,
	}, nil
}

// IsBase reports whether this is a base-level state.
func (s *State) IsBase() bool { return s.know == nil }

// Label returns the base label. Nested states return "".
func (s *State) Label() string { return s.label }

// Arity returns the length of the knowledge tuple: 1 for base states,
// the player count for nested states.
func (s *State) Arity() int {
	if s.IsBase() {
		return 1
	}
	return len(s.know)
}

// Depth returns the nesting depth: 0 for base states, one more than the
// members' depth otherwise.
func (s *State) Depth() int { return s.depth }

// Key returns the canonical structural key of the state. Two states are
// structurally equal iff their keys are equal.
func (s *State) Key() string { return s.key }

// Equal reports structural equality.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.key == o.key
}

// Hash returns a structural hash consistent with Equal.
func (s *State) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.key))
	return h.Sum64()
}

// Project returns the knowledge set of the given player: the set of
// previous-level states the player considers possible. A base state
// projects to a singleton of itself for every player. Panics when
// player is out of range on a nested state.
func (s *State) Project(player int) Set {
	if s.IsBase() {
		return NewSet(s)
	}
	return s.know[player]
}

// ConsistentBase resolves the set of base-level states this state still
// considers possible, by repeatedly intersecting the per-player
// projections of the current frontier until it bottoms out at base
// states. The construction only ever combines jointly reachable
// states, so the intersection is never empty; observing an empty one
// returns ErrInconsistentKnowledge.
func (s *State) ConsistentBase() (Set, error) {
	if s.IsBase() {
		return NewSet(s), nil
	}
	frontier := []*State{s}
	for !frontier[0].IsBase() {
		var acc Set
		first := true
		for _, st := range frontier {
			for p := 0; p < st.Arity(); p++ {
				if first {
					acc = st.Project(p)
					first = false
					continue
				}
				acc = acc.Intersect(st.Project(p))
			}
		}
		if acc.Len() == 0 {
			return Set{}, fmt.Errorf("%w: empty intersection below depth %d", ErrInconsistentKnowledge, frontier[0].depth)
		}
		frontier = acc.members
	}
	return NewSet(frontier...), nil
}

// Set is an immutable set of states held in canonical key order, so
// iteration over States is deterministic for a given content.
type Set struct {
	members []*State
	id      string
}

// NewSet builds a set from the given states, deduplicating structurally
// equal ones.
func NewSet(states ...*State) Set {
	ms := make([]*State, 0, len(states))
	seen := make(map[string]bool, len(states))
	for _, s := range states {
		if s == nil || seen[s.key] {
			continue
		}
		seen[s.key] = true
		ms = append(ms, s)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].key < ms[j].key })
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range ms {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.key)
	}
	b.WriteByte('}')
	return Set{members: ms, id: b.String()}
}

// Len returns the number of members.
func (s Set) Len() int { return len(s.members) }

// States returns the members in canonical order.
func (s Set) States() []*State { return append([]*State(nil), s.members...) }

// Contains reports structural membership.
func (s Set) Contains(t *State) bool {
	if t == nil {
		return false
	}
	i := sort.Search(len(s.members), func(i int) bool { return s.members[i].key >= t.key })
	return i < len(s.members) && s.members[i].key == t.key
}

// Equal reports whether both sets have structurally equal members.
func (s Set) Equal(o Set) bool {
	if len(s.members) != len(o.members) {
		return false
	}
	for i := range s.members {
		if s.members[i].key != o.members[i].key {
			return false
		}
	}
	return true
}

// Intersect returns the set of states present in both sets.
func (s Set) Intersect(o Set) Set {
	out := make([]*State, 0)
	i, j := 0, 0
	for i < len(s.members) && j < len(o.members) {
		switch {
		case s.members[i].key < o.members[j].key:
			i++
		case s.members[i].key > o.members[j].key:
			j++
		default:
			out = append(out, s.members[i])
			i++
			j++
		}
	}
	return NewSet(out...)
}

// Union returns the set of states present in either set.
func (s Set) Union(o Set) Set {
	out := make([]*State, 0, len(s.members)+len(o.members))
	out = append(out, s.members...)
	out = append(out, o.members...)
	return NewSet(out...)
}
