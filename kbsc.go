package mkbsc

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Transform applies one step of the knowledge-based subset construction
// to g, producing a game one epistemic level deeper. Each new state is a
// tuple of per-player knowledge sets: the level-k states the player
// considers possible given its own observation history. Histories
// inducing the same tuple collapse to the same state.
//
// A joint action is enabled at a tuple iff it is enabled in g at every
// state of every player's knowledge component. Taking it and observing
// the resulting per-player observation classes yields the successor
// tuple; nondeterminism in g carries over whenever distinct actual
// branches induce distinct tuples.
func Transform(g *Game) (*Game, error) {
	if len(g.reachable()) == 0 {
		return nil, fmt.Errorf("%w: nothing reachable from %s", ErrEmptyGame, g.initial.key)
	}

	type node struct {
		tuple []Set
		state *State
	}
	tupleKey := func(tuple []Set) string {
		var b strings.Builder
		for i, k := range tuple {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(k.id)
		}
		return b.String()
	}

	nodes := make(map[string]*node)
	var order []*node
	push := func(tuple []Set) (*node, error) {
		k := tupleKey(tuple)
		if n, ok := nodes[k]; ok {
			return n, nil
		}
		st, err := NewState(tuple)
		if err != nil {
			return nil, err
		}
		n := &node{tuple: tuple, state: st}
		nodes[k] = n
		order = append(order, n)
		return n, nil
	}

	// The initial state is commonly known, so every player starts from
	// the singleton knowledge {initial}.
	init := make([]Set, g.players)
	for p := range init {
		init[p] = NewSet(g.initial)
	}
	initNode, err := push(init)
	if err != nil {
		return nil, err
	}

	joint := g.jointActions()
	var transitions []Transition

	for i := 0; i < len(order); i++ {
		v := order[i]
		for _, a := range joint {
			post := make([]Set, g.players)
			enabled := true
			for p := 0; p < g.players && enabled; p++ {
				var acc Set
				for _, s := range v.tuple[p].members {
					succ := g.Successors(s, a)
					if succ.Len() == 0 {
						enabled = false
						break
					}
					acc = acc.Union(succ)
				}
				post[p] = acc
			}
			if !enabled {
				continue
			}

			// Branches synchronize on the successors every player still
			// considers possible; each one fixes a joint observation.
			common := post[0]
			for p := 1; p < g.players; p++ {
				common = common.Intersect(post[p])
			}
			for _, u := range common.members {
				w := make([]Set, g.players)
				for p := range w {
					class, _ := g.ObservationClass(p, u)
					w[p] = post[p].Intersect(class)
				}
				target, err := push(w)
				if err != nil {
					return nil, err
				}
				transitions = append(transitions, Transition{From: v.state, Via: a, To: target.state})
			}
		}
	}

	states := make([]*State, len(order))
	for i, n := range order {
		states[i] = n.state
	}
	obs := localObservations(states, transitions, g.players)
	return newGame(g.players, states, initNode.state, g.actions, transitions, obs)
}

// localObservations derives each player's observation partition over
// the new states. Two states are indistinguishable to a player iff
// their knowledge components for that player are equal as sets AND the
// player cannot tell them apart by any finite sequence of its own
// actions and observations: a player-local bisimulation, computed by
// partition refinement seeded with component equality.
func localObservations(states []*State, transitions []Transition, players int) [][]Set {
	out := make(map[string][]Transition, len(states))
	for _, t := range transitions {
		out[t.From.key] = append(out[t.From.key], t)
	}

	obs := make([][]Set, players)
	for p := 0; p < players; p++ {
		block := make(map[string]string, len(states))
		for _, s := range states {
			block[s.key] = s.Project(p).id
		}
		for {
			next := make(map[string]string, len(states))
			for _, s := range states {
				sigs := make([]string, 0, len(out[s.key]))
				for _, t := range out[s.key] {
					sigs = append(sigs, t.Via[p]+"\x00"+block[t.To.key])
				}
				sort.Strings(sigs)
				sigs = dedupeStrings(sigs)
				next[s.key] = digest(block[s.key] + "\x01" + strings.Join(sigs, "\x01"))
			}
			if countBlocks(block, states) == countBlocks(next, states) {
				break
			}
			block = next
		}

		classes := make(map[string][]*State)
		var classOrder []string
		for _, s := range states {
			b := block[s.key]
			if _, ok := classes[b]; !ok {
				classOrder = append(classOrder, b)
			}
			classes[b] = append(classes[b], s)
		}
		obs[p] = make([]Set, 0, len(classOrder))
		for _, b := range classOrder {
			obs[p] = append(obs[p], NewSet(classes[b]...))
		}
	}
	return obs
}

func countBlocks(block map[string]string, states []*State) int {
	seen := make(map[string]bool, len(block))
	for _, s := range states {
		seen[block[s.key]] = true
	}
	return len(seen)
}

func dedupeStrings(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func digest(s string) string {
	h := fnv.New64a()
	h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
