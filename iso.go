package mkbsc

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultIsoBudget bounds the bijection search when the caller does not
// supply a budget of its own.
const DefaultIsoBudget = 1 << 20

// Isomorphic reports whether a and b are isomorphic as labeled
// transition systems: a bijection between their states preserving the
// initial state, every joint-action-labeled transition, and every
// player's observation partition. State identity plays no role; only
// structure is compared.
//
// budget caps the number of candidate assignments the search may try
// (0 means DefaultIsoBudget). When the budget runs out the result is
// inconclusive and ErrIsoBudget is returned, which is distinct from a
// confirmed non-isomorphism.
func Isomorphic(a, b *Game, budget int) (bool, error) {
	if budget <= 0 {
		budget = DefaultIsoBudget
	}
	if a.players != b.players {
		return false, nil
	}
	for p := 0; p < a.players; p++ {
		if len(a.actions[p]) != len(b.actions[p]) {
			return false, nil
		}
		for i := range a.actions[p] {
			if a.actions[p][i] != b.actions[p][i] {
				return false, nil
			}
		}
	}
	if len(a.states) != len(b.states) || len(a.transitions) != len(b.transitions) {
		return false, nil
	}
	for p := 0; p < a.players; p++ {
		if !sameClassSizes(a.obs[p], b.obs[p]) {
			return false, nil
		}
	}

	ca := refineColors(a)
	cb := refineColors(b)
	if !sameHistogram(ca, cb) {
		return false, nil
	}

	m := newMatcher(a, b, ca, cb, budget)
	return m.search()
}

func sameClassSizes(a, b []Set) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]int, len(a))
	bs := make([]int, len(b))
	for i := range a {
		as[i], bs[i] = a[i].Len(), b[i].Len()
	}
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// refineColors runs color refinement over a game's states: the initial
// color encodes initial-state status, per-player observation-class
// sizes and the action-labeled degree profile; each round folds in the
// colors of action-labeled neighbors and observation classmates. The
// result is a structural invariant used both to prune and to restrict
// bijection candidates.
func refineColors(g *Game) map[string]string {
	in := make(map[string][]Transition, len(g.states))
	out := make(map[string][]Transition, len(g.states))
	for _, t := range g.transitions {
		out[t.From.key] = append(out[t.From.key], t)
		in[t.To.key] = append(in[t.To.key], t)
	}

	color := make(map[string]string, len(g.states))
	for _, s := range g.states {
		parts := []string{strconv.FormatBool(s.key == g.initial.key)}
		for p := 0; p < g.players; p++ {
			class, _ := g.ObservationClass(p, s)
			parts = append(parts, strconv.Itoa(class.Len()))
		}
		degs := make([]string, 0, len(out[s.key])+len(in[s.key]))
		for _, t := range out[s.key] {
			degs = append(degs, ">"+t.Via.actionKey())
		}
		for _, t := range in[s.key] {
			degs = append(degs, "<"+t.Via.actionKey())
		}
		sort.Strings(degs)
		color[s.key] = digest(strings.Join(append(parts, degs...), "\x01"))
	}

	for {
		next := make(map[string]string, len(g.states))
		for _, s := range g.states {
			parts := []string{color[s.key]}
			sigs := make([]string, 0, len(out[s.key])+len(in[s.key]))
			for _, t := range out[s.key] {
				sigs = append(sigs, ">"+t.Via.actionKey()+"\x00"+color[t.To.key])
			}
			for _, t := range in[s.key] {
				sigs = append(sigs, "<"+t.Via.actionKey()+"\x00"+color[t.From.key])
			}
			sort.Strings(sigs)
			parts = append(parts, sigs...)
			for p := 0; p < g.players; p++ {
				class, _ := g.ObservationClass(p, s)
				mates := make([]string, 0, class.Len())
				for _, mate := range class.members {
					mates = append(mates, color[mate.key])
				}
				sort.Strings(mates)
				parts = append(parts, digest(strings.Join(mates, "\x00")))
			}
			next[s.key] = digest(strings.Join(parts, "\x01"))
		}
		if countColors(color, g.states) == countColors(next, g.states) {
			return color
		}
		color = next
	}
}

func countColors(color map[string]string, states []*State) int {
	seen := make(map[string]bool, len(color))
	for _, s := range states {
		seen[color[s.key]] = true
	}
	return len(seen)
}

func sameHistogram(a, b map[string]string) bool {
	counts := make(map[string]int, len(a))
	for _, c := range a {
		counts[c]++
	}
	for _, c := range b {
		counts[c]--
	}
	for _, n := range counts {
		if n != 0 {
			return false
		}
	}
	return true
}

// matcher performs the backtracking bijection search. States of a are
// assigned in order of ascending candidate-set size; ties are broken by
// color and then by canonical state key. The ordering is purely a
// search heuristic, deterministic for a given input, and never escapes
// this file.
type matcher struct {
	a, b   *Game
	joint  []JointAction
	order  []*State
	cand   map[string][]*State
	pairs  [][2]*State
	used   map[string]bool
	budget int
}

func newMatcher(a, b *Game, ca, cb map[string]string, budget int) *matcher {
	byColor := make(map[string][]*State)
	for _, s := range b.states {
		byColor[cb[s.key]] = append(byColor[cb[s.key]], s)
	}
	for _, group := range byColor {
		sort.Slice(group, func(i, j int) bool { return group[i].key < group[j].key })
	}

	m := &matcher{
		a:      a,
		b:      b,
		joint:  a.jointActions(),
		cand:   make(map[string][]*State, len(a.states)),
		used:   make(map[string]bool, len(b.states)),
		budget: budget,
	}
	m.order = append(m.order, a.states...)
	for _, s := range m.order {
		m.cand[s.key] = byColor[ca[s.key]]
	}
	sort.Slice(m.order, func(i, j int) bool {
		x, y := m.order[i], m.order[j]
		if lx, ly := len(m.cand[x.key]), len(m.cand[y.key]); lx != ly {
			return lx < ly
		}
		if ca[x.key] != ca[y.key] {
			return ca[x.key] < ca[y.key]
		}
		return x.key < y.key
	})
	return m
}

func (m *matcher) search() (bool, error) {
	return m.extend(0)
}

func (m *matcher) extend(i int) (bool, error) {
	if i == len(m.order) {
		return true, nil
	}
	x := m.order[i]
	for _, y := range m.cand[x.key] {
		if m.used[y.key] {
			continue
		}
		m.budget--
		if m.budget < 0 {
			return false, ErrIsoBudget
		}
		if !m.consistent(x, y) {
			continue
		}
		m.pairs = append(m.pairs, [2]*State{x, y})
		m.used[y.key] = true
		ok, err := m.extend(i + 1)
		if ok || err != nil {
			return ok, err
		}
		m.pairs = m.pairs[:len(m.pairs)-1]
		delete(m.used, y.key)
	}
	return false, nil
}

// consistent checks the candidate pair (x, y) against every pair mapped
// so far, including (x, y) itself to cover self-loops: transitions must
// correspond exactly in both directions for every joint action, the
// initial states must map to each other, and same-class relations must
// agree for every player.
func (m *matcher) consistent(x, y *State) bool {
	if (x.key == m.a.initial.key) != (y.key == m.b.initial.key) {
		return false
	}
	check := append(m.pairs, [2]*State{x, y})
	for _, pair := range check {
		x2, y2 := pair[0], pair[1]
		for _, act := range m.joint {
			if m.a.Successors(x, act).Contains(x2) != m.b.Successors(y, act).Contains(y2) {
				return false
			}
			if m.a.Successors(x2, act).Contains(x) != m.b.Successors(y2, act).Contains(y) {
				return false
			}
		}
		for p := 0; p < m.a.players; p++ {
			if (m.a.classOf[p][x.key] == m.a.classOf[p][x2.key]) !=
				(m.b.classOf[p][y.key] == m.b.classOf[p][y2.key]) {
				return false
			}
		}
	}
	return true
}
