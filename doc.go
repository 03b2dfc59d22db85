// Package mkbsc implements the multiplayer knowledge-based subset
// construction (MKBSC) over finite games of imperfect information.
//
// A game is a labeled transition system with a per-player observation
// partition over its states. Applying the construction produces a new
// game whose states are tuples of per-player knowledge sets: the sets
// of states each player considers possible given its own observation
// history. Iterating the construction yields a hierarchy of games of
// increasing epistemic depth; IterateUntilFixed drives the iteration
// until two consecutive levels are isomorphic as labeled transition
// systems, after which no new epistemic distinctions appear.
//
// The package also provides canonical textual renderings of knowledge
// states, a deterministic serialization of games at any level, and a
// per-player epistemic tree view with content-addressed nodes.
package mkbsc
