package mkbsc

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// IterateOptions configures the fixed-point iteration.
type IterateOptions struct {
	// MaxLevels bounds how many construction levels may be computed
	// before giving up with ErrNoFixedPoint.
	MaxLevels int

	// IsoBudget caps each isomorphism search (0 uses DefaultIsoBudget).
	IsoBudget int

	// Logger receives per-level progress. Nil disables logging.
	Logger logrus.FieldLogger
}

// IterateUntilFixed repeatedly applies Transform starting from g0 and
// stops at the first level whose successor is isomorphic to it,
// returning that game and its level index (0 for g0 itself).
//
// When MaxLevels is exhausted the last computed game is returned
// together with ErrNoFixedPoint, so a caller may explicitly accept it
// as an approximation; it is never passed off as a fixed point. An
// inconclusive isomorphism search surfaces as ErrIsoBudget. The context
// is consulted between levels, since each level can be expensive.
func IterateUntilFixed(ctx context.Context, g0 *Game, opts IterateOptions) (*Game, int, error) {
	log := opts.Logger
	if log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		log = silent
	}
	if opts.MaxLevels <= 0 {
		return nil, 0, fmt.Errorf("%w: level bound is %d", ErrNoFixedPoint, opts.MaxLevels)
	}

	g := g0
	for level := 0; level < opts.MaxLevels; level++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		start := time.Now()
		next, err := Transform(g)
		if err != nil {
			return nil, 0, fmt.Errorf("transform at level %d: %w", level, err)
		}
		log.WithFields(logrus.Fields{
			"level":       level + 1,
			"states":      next.NumStates(),
			"transitions": len(next.transitions),
			"elapsed":     time.Since(start),
		}).Debug("computed construction level")

		iso, err := Isomorphic(g, next, opts.IsoBudget)
		if err != nil {
			return nil, 0, fmt.Errorf("isomorphism check at level %d: %w", level, err)
		}
		if iso {
			log.WithFields(logrus.Fields{
				"level":  level,
				"states": g.NumStates(),
			}).Info("knowledge hierarchy reached a fixed point")
			return g, level, nil
		}
		g = next
	}
	return g, opts.MaxLevels, fmt.Errorf("%w: still refining after %d levels", ErrNoFixedPoint, opts.MaxLevels)
}
