package mkbsc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// JointAction holds one action symbol per player.
type JointAction []string

// String renders the joint action in parenthesized form, e.g. "(G, P)".
func (a JointAction) String() string { return "(" + strings.Join(a, ", ") + ")" }

func (a JointAction) actionKey() string {
	var b strings.Builder
	for i, x := range a {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Quote(x))
	}
	return b.String()
}

// Transition is one action-labeled edge of a game.
type Transition struct {
	From *State
	Via  JointAction
	To   *State
}

// TransitionDef is a transition in a caller-supplied game definition,
// referencing states by label.
type TransitionDef struct {
	From string   `json:"from"`
	Via  []string `json:"via"`
	To   string   `json:"to"`
}

// GameDef is the caller-facing definition of a base-level game. All
// references are by label; NewGame validates them structurally.
type GameDef struct {
	States       []string        `json:"states"`
	Initial      string          `json:"initial"`
	Actions      [][]string      `json:"actions"`
	Transitions  []TransitionDef `json:"transitions"`
	Observations [][][]string    `json:"observations"`
}

// Game is an action-labeled transition system with a per-player
// observation partition over its states. Games are read-only after
// construction: either built from a GameDef at the base level, or
// produced by Transform at deeper levels.
type Game struct {
	players     int
	states      []*State
	index       map[string]int
	initial     *State
	actions     [][]string
	transitions []Transition
	succ        map[string]map[string]Set
	obs         [][]Set
	classOf     []map[string]int
}

// NewGame validates a caller-supplied definition and builds the
// base-level game. Structural problems are reported as ErrMalformedGame.
func NewGame(def GameDef) (*Game, error) {
	players := len(def.Actions)
	if players == 0 {
		return nil, fmt.Errorf("%w: no player action alphabets", ErrMalformedGame)
	}
	for p, alphabet := range def.Actions {
		if len(alphabet) == 0 {
			return nil, fmt.Errorf("%w: player %d has an empty alphabet", ErrMalformedGame, p)
		}
		seen := make(map[string]bool, len(alphabet))
		for _, sym := range alphabet {
			if seen[sym] {
				return nil, fmt.Errorf("%w: player %d lists action %q twice", ErrMalformedGame, p, sym)
			}
			seen[sym] = true
		}
	}
	if len(def.States) == 0 {
		return nil, fmt.Errorf("%w: no states", ErrMalformedGame)
	}
	states := make([]*State, 0, len(def.States))
	byLabel := make(map[string]*State, len(def.States))
	for _, label := range def.States {
		if _, ok := byLabel[label]; ok {
			return nil, fmt.Errorf("%w: duplicate state %q", ErrMalformedGame, label)
		}
		s := NewBaseState(label)
		byLabel[label] = s
		states = append(states, s)
	}
	initial, ok := byLabel[def.Initial]
	if !ok {
		return nil, fmt.Errorf("%w: initial state %q is not a state", ErrMalformedGame, def.Initial)
	}

	transitions := make([]Transition, 0, len(def.Transitions))
	for _, td := range def.Transitions {
		if len(td.Via) != players {
			return nil, fmt.Errorf("%w: transition %q -> %q has %d actions, want %d",
				ErrMalformedGame, td.From, td.To, len(td.Via), players)
		}
		from, ok := byLabel[td.From]
		if !ok {
			return nil, fmt.Errorf("%w: transition references unknown state %q", ErrMalformedGame, td.From)
		}
		to, ok := byLabel[td.To]
		if !ok {
			return nil, fmt.Errorf("%w: transition references unknown state %q", ErrMalformedGame, td.To)
		}
		for p, sym := range td.Via {
			if !containsString(def.Actions[p], sym) {
				return nil, fmt.Errorf("%w: action %q is not in player %d's alphabet", ErrMalformedGame, sym, p)
			}
		}
		transitions = append(transitions, Transition{
			From: from,
			Via:  append(JointAction(nil), td.Via...),
			To:   to,
		})
	}

	if len(def.Observations) != players {
		return nil, fmt.Errorf("%w: %d observation partitions for %d players",
			ErrMalformedGame, len(def.Observations), players)
	}
	obs := make([][]Set, players)
	for p, classes := range def.Observations {
		obs[p] = make([]Set, 0, len(classes))
		for _, class := range classes {
			members := make([]*State, 0, len(class))
			for _, label := range class {
				s, ok := byLabel[label]
				if !ok {
					return nil, fmt.Errorf("%w: player %d observation class references unknown state %q",
						ErrMalformedGame, p, label)
				}
				members = append(members, s)
			}
			obs[p] = append(obs[p], NewSet(members...))
		}
	}

	return newGame(players, states, initial, def.Actions, transitions, obs)
}

// newGame assembles a game from already-built states, checking the
// structural invariants shared by every level.
func newGame(players int, states []*State, initial *State, actions [][]string, transitions []Transition, obs [][]Set) (*Game, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no states", ErrMalformedGame)
	}
	index := make(map[string]int, len(states))
	for i, s := range states {
		if _, ok := index[s.key]; ok {
			return nil, fmt.Errorf("%w: duplicate state %s", ErrMalformedGame, s.key)
		}
		index[s.key] = i
	}
	arity, depth := states[0].Arity(), states[0].Depth()
	for _, s := range states {
		if s.Arity() != arity || s.Depth() != depth {
			return nil, fmt.Errorf("%w: states of mixed level in one game", ErrArityMismatch)
		}
	}
	if _, ok := index[initial.key]; !ok {
		return nil, fmt.Errorf("%w: initial state is not a state", ErrMalformedGame)
	}

	g := &Game{
		players: players,
		states:  states,
		index:   index,
		initial: initial,
		actions: make([][]string, players),
		succ:    make(map[string]map[string]Set, len(states)),
		obs:     obs,
		classOf: make([]map[string]int, players),
	}
	for p := range actions {
		g.actions[p] = append([]string(nil), actions[p]...)
	}

	seenEdge := make(map[string]bool, len(transitions))
	for _, t := range transitions {
		if _, ok := index[t.From.key]; !ok {
			return nil, fmt.Errorf("%w: transition from unknown state %s", ErrMalformedGame, t.From.key)
		}
		if _, ok := index[t.To.key]; !ok {
			return nil, fmt.Errorf("%w: transition to unknown state %s", ErrMalformedGame, t.To.key)
		}
		if len(t.Via) != players {
			return nil, fmt.Errorf("%w: joint action arity %d, want %d", ErrMalformedGame, len(t.Via), players)
		}
		edge := t.From.key + "|" + t.Via.actionKey() + "|" + t.To.key
		if seenEdge[edge] {
			continue
		}
		seenEdge[edge] = true
		g.transitions = append(g.transitions, t)
	}
	sort.Slice(g.transitions, func(i, j int) bool {
		a, b := g.transitions[i], g.transitions[j]
		if a.From.key != b.From.key {
			return a.From.key < b.From.key
		}
		if ak, bk := a.Via.actionKey(), b.Via.actionKey(); ak != bk {
			return ak < bk
		}
		return a.To.key < b.To.key
	})
	for _, t := range g.transitions {
		byAction, ok := g.succ[t.From.key]
		if !ok {
			byAction = make(map[string]Set)
			g.succ[t.From.key] = byAction
		}
		ak := t.Via.actionKey()
		byAction[ak] = byAction[ak].Union(NewSet(t.To))
	}

	if len(obs) != players {
		return nil, fmt.Errorf("%w: %d observation partitions for %d players", ErrMalformedGame, len(obs), players)
	}
	for p, classes := range obs {
		g.classOf[p] = make(map[string]int, len(states))
		for ci, class := range classes {
			if class.Len() == 0 {
				return nil, fmt.Errorf("%w: player %d has an empty observation class", ErrMalformedGame, p)
			}
			for _, s := range class.members {
				if _, ok := index[s.key]; !ok {
					return nil, fmt.Errorf("%w: player %d observation class references unknown state %s",
						ErrMalformedGame, p, s.key)
				}
				if _, dup := g.classOf[p][s.key]; dup {
					return nil, fmt.Errorf("%w: state %s appears in two of player %d's observation classes",
						ErrMalformedGame, s.key, p)
				}
				g.classOf[p][s.key] = ci
			}
		}
		if len(g.classOf[p]) != len(states) {
			return nil, fmt.Errorf("%w: player %d's observation partition does not cover every state",
				ErrMalformedGame, p)
		}
	}
	return g, nil
}

// Players returns the number of players.
func (g *Game) Players() int { return g.players }

// Level returns the epistemic depth of the game's states: 0 for a
// base-level game, k for the k-th application of the construction.
func (g *Game) Level() int { return g.states[0].Depth() }

// NumStates returns the number of states.
func (g *Game) NumStates() int { return len(g.states) }

// States returns the states in canonical construction order.
func (g *Game) States() []*State { return append([]*State(nil), g.states...) }

// Initial returns the designated initial state.
func (g *Game) Initial() *State { return g.initial }

// Actions returns the ordered action alphabet of the given player.
func (g *Game) Actions(player int) []string {
	return append([]string(nil), g.actions[player]...)
}

// Transitions returns the transition relation in canonical order.
func (g *Game) Transitions() []Transition {
	return append([]Transition(nil), g.transitions...)
}

// Successors returns the set of states reachable from s by the given
// joint action. The set is empty when the action is not enabled at s.
func (g *Game) Successors(s *State, a JointAction) Set {
	byAction, ok := g.succ[s.key]
	if !ok {
		return Set{}
	}
	return byAction[a.actionKey()]
}

// ObservationClasses returns the given player's observation partition.
func (g *Game) ObservationClasses(player int) []Set {
	return append([]Set(nil), g.obs[player]...)
}

// ObservationClass returns the class of the player's partition that
// contains s, and whether s belongs to the game at all.
func (g *Game) ObservationClass(player int, s *State) (Set, bool) {
	ci, ok := g.classOf[player][s.key]
	if !ok {
		return Set{}, false
	}
	return g.obs[player][ci], true
}

// Contains reports whether s is a state of this game.
func (g *Game) Contains(s *State) bool {
	_, ok := g.index[s.key]
	return ok
}

// jointActions enumerates the full joint alphabet in lexicographic
// order of the per-player alphabets.
func (g *Game) jointActions() []JointAction {
	total := 1
	for _, alphabet := range g.actions {
		total *= len(alphabet)
	}
	out := make([]JointAction, 0, total)
	idx := make([]int, g.players)
	for {
		a := make(JointAction, g.players)
		for p := range a {
			a[p] = g.actions[p][idx[p]]
		}
		out = append(out, a)
		p := g.players - 1
		for p >= 0 {
			idx[p]++
			if idx[p] < len(g.actions[p]) {
				break
			}
			idx[p] = 0
			p--
		}
		if p < 0 {
			return out
		}
	}
}

// reachable returns the states reachable from the initial state, in
// breadth-first order.
func (g *Game) reachable() []*State {
	visited := map[string]bool{g.initial.key: true}
	order := []*State{g.initial}
	adj := make(map[string][]*State, len(g.states))
	for _, t := range g.transitions {
		adj[t.From.key] = append(adj[t.From.key], t.To)
	}
	for i := 0; i < len(order); i++ {
		for _, next := range adj[order[i].key] {
			if !visited[next.key] {
				visited[next.key] = true
				order = append(order, next)
			}
		}
	}
	return order
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
