package mkbsc

// holeGameDef is a 5-state, 2-player coordination game: after (G, G)
// the token either falls in a hole or not, player 0 cannot tell which,
// player 1 can. Shared across the construction and iteration tests.
func holeGameDef() GameDef {
	return GameDef{
		States:  []string{"start", "hole", "no hole", "win", "lose"},
		Initial: "start",
		Actions: [][]string{{"G", "P", "D"}, {"G", "P", "D"}},
		Transitions: []TransitionDef{
			{From: "start", Via: []string{"G", "G"}, To: "hole"},
			{From: "start", Via: []string{"G", "G"}, To: "no hole"},
			{From: "hole", Via: []string{"D", "D"}, To: "hole"},
			{From: "hole", Via: []string{"P", "P"}, To: "win"},
			{From: "hole", Via: []string{"P", "D"}, To: "lose"},
			{From: "hole", Via: []string{"D", "P"}, To: "lose"},
			{From: "no hole", Via: []string{"D", "D"}, To: "hole"},
			{From: "no hole", Via: []string{"D", "P"}, To: "lose"},
			{From: "no hole", Via: []string{"P", "D"}, To: "lose"},
			{From: "hole", Via: []string{"P", "P"}, To: "lose"},
		},
		Observations: [][][]string{
			{{"start"}, {"hole", "no hole"}, {"win"}, {"lose"}},
			{{"start"}, {"hole"}, {"no hole"}, {"win"}, {"lose"}},
		},
	}
}

// fullyObservableHoleDef is the same game with the finest possible
// partition for both players.
func fullyObservableHoleDef() GameDef {
	def := holeGameDef()
	singletons := [][]string{{"start"}, {"hole"}, {"no hole"}, {"win"}, {"lose"}}
	def.Observations = [][][]string{singletons, singletons}
	return def
}

func mustGame(def GameDef) *Game {
	g, err := NewGame(def)
	if err != nil {
		panic(err)
	}
	return g
}

func mustNested(know []Set) *State {
	s, err := NewState(know)
	if err != nil {
		panic(err)
	}
	return s
}
