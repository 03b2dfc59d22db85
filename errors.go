package mkbsc

import "errors"

// Sentinel errors returned by the construction. Callers match them with
// errors.Is; every error carries additional context via wrapping.
var (
	// ErrMalformedGame reports a game definition that fails structural
	// validation: an unknown state reference, an empty alphabet, or an
	// observation partition that is not disjoint and covering.
	ErrMalformedGame = errors.New("mkbsc: malformed game")

	// ErrArityMismatch reports knowledge states of inconsistent arity
	// combined into a single state or game.
	ErrArityMismatch = errors.New("mkbsc: knowledge arity mismatch")

	// ErrInconsistentKnowledge reports an empty possibility intersection
	// during base-state resolution. A correctly built hierarchy never
	// produces one, so this indicates a construction bug.
	ErrInconsistentKnowledge = errors.New("mkbsc: inconsistent knowledge")

	// ErrEmptyGame reports a game with no states reachable from its
	// initial state.
	ErrEmptyGame = errors.New("mkbsc: empty game")

	// ErrNoFixedPoint reports that the iteration bound was exceeded
	// before two consecutive levels became isomorphic.
	ErrNoFixedPoint = errors.New("mkbsc: no fixed point within level bound")

	// ErrIsoBudget reports that the isomorphism search exhausted its
	// budget before reaching a verdict. The result is inconclusive,
	// unlike a confirmed non-isomorphism.
	ErrIsoBudget = errors.New("mkbsc: isomorphism search budget exceeded")
)
