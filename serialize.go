package mkbsc

import (
	"encoding/json"
	"fmt"
	"os"
)

// stateJSON is the wire form of a State: either a base label or one
// member list per player, recursively.
type stateJSON struct {
	Base *string       `json:"base,omitempty"`
	Know [][]stateJSON `json:"know,omitempty"`
}

type edgeJSON struct {
	From int      `json:"from"`
	Via  []string `json:"via"`
	To   int      `json:"to"`
}

type gameJSON struct {
	Players      int         `json:"players"`
	Actions      [][]string  `json:"actions"`
	States       []stateJSON `json:"states"`
	Initial      int         `json:"initial"`
	Transitions  []edgeJSON  `json:"transitions"`
	Observations [][][]int   `json:"observations"`
}

func encodeState(s *State) stateJSON {
	if s.IsBase() {
		label := s.label
		return stateJSON{Base: &label}
	}
	know := make([][]stateJSON, len(s.know))
	for p, k := range s.know {
		know[p] = make([]stateJSON, 0, k.Len())
		for _, m := range k.members {
			know[p] = append(know[p], encodeState(m))
		}
	}
	return stateJSON{Know: know}
}

func decodeState(sj stateJSON) (*State, error) {
	if sj.Base != nil {
		if len(sj.Know) != 0 {
			return nil, fmt.Errorf("%w: state is both base and nested", ErrMalformedGame)
		}
		return NewBaseState(*sj.Base), nil
	}
	if len(sj.Know) == 0 {
		return nil, fmt.Errorf("%w: state is neither base nor nested", ErrMalformedGame)
	}
	know := make([]Set, len(sj.Know))
	for p, members := range sj.Know {
		states := make([]*State, 0, len(members))
		for _, mj := range members {
			m, err := decodeState(mj)
			if err != nil {
				return nil, err
			}
			states = append(states, m)
		}
		know[p] = NewSet(states...)
	}
	return NewState(know)
}

// MarshalState serializes a knowledge state. The encoding is canonical:
// structurally equal states serialize to identical bytes.
func MarshalState(s *State) ([]byte, error) {
	return json.Marshal(encodeState(s))
}

// UnmarshalState reverses MarshalState.
func UnmarshalState(data []byte) (*State, error) {
	var sj stateJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGame, err)
	}
	return decodeState(sj)
}

// MarshalGame serializes a game at any construction level. The output
// is byte-for-byte stable: marshaling, unmarshaling and marshaling
// again reproduces the same bytes.
func MarshalGame(g *Game) ([]byte, error) {
	gj := gameJSON{
		Players: g.players,
		Actions: make([][]string, g.players),
		States:  make([]stateJSON, len(g.states)),
		Initial: g.index[g.initial.key],
	}
	for p := range g.actions {
		gj.Actions[p] = append([]string(nil), g.actions[p]...)
	}
	for i, s := range g.states {
		gj.States[i] = encodeState(s)
	}
	gj.Transitions = make([]edgeJSON, len(g.transitions))
	for i, t := range g.transitions {
		gj.Transitions[i] = edgeJSON{
			From: g.index[t.From.key],
			Via:  append([]string(nil), t.Via...),
			To:   g.index[t.To.key],
		}
	}
	gj.Observations = make([][][]int, g.players)
	for p, classes := range g.obs {
		gj.Observations[p] = make([][]int, len(classes))
		for ci, class := range classes {
			idxs := make([]int, 0, class.Len())
			for _, s := range class.members {
				idxs = append(idxs, g.index[s.key])
			}
			gj.Observations[p][ci] = idxs
		}
	}
	return json.MarshalIndent(gj, "", "  ")
}

// UnmarshalGame reverses MarshalGame, re-validating every structural
// invariant of the stored game.
func UnmarshalGame(data []byte) (*Game, error) {
	var gj gameJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGame, err)
	}
	if gj.Players <= 0 || len(gj.Actions) != gj.Players {
		return nil, fmt.Errorf("%w: %d alphabets for %d players", ErrMalformedGame, len(gj.Actions), gj.Players)
	}
	states := make([]*State, len(gj.States))
	for i, sj := range gj.States {
		s, err := decodeState(sj)
		if err != nil {
			return nil, err
		}
		states[i] = s
	}
	at := func(i int) (*State, error) {
		if i < 0 || i >= len(states) {
			return nil, fmt.Errorf("%w: state index %d out of range", ErrMalformedGame, i)
		}
		return states[i], nil
	}
	initial, err := at(gj.Initial)
	if err != nil {
		return nil, err
	}
	transitions := make([]Transition, 0, len(gj.Transitions))
	for _, ej := range gj.Transitions {
		from, err := at(ej.From)
		if err != nil {
			return nil, err
		}
		to, err := at(ej.To)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, Transition{From: from, Via: JointAction(ej.Via), To: to})
	}
	obs := make([][]Set, gj.Players)
	if len(gj.Observations) != gj.Players {
		return nil, fmt.Errorf("%w: %d observation partitions for %d players",
			ErrMalformedGame, len(gj.Observations), gj.Players)
	}
	for p, classes := range gj.Observations {
		obs[p] = make([]Set, 0, len(classes))
		for _, idxs := range classes {
			members := make([]*State, 0, len(idxs))
			for _, i := range idxs {
				s, err := at(i)
				if err != nil {
					return nil, err
				}
				members = append(members, s)
			}
			obs[p] = append(obs[p], NewSet(members...))
		}
	}
	return newGame(gj.Players, states, initial, gj.Actions, transitions, obs)
}

// WriteGameFile writes the serialized game to path.
func WriteGameFile(path string, g *Game) error {
	data, err := MarshalGame(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadGameFile reads a game serialized with WriteGameFile.
func ReadGameFile(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalGame(data)
}
