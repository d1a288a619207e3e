package solver

import (
	"errors"
	"fmt"

	"github.com/chazu/contour/pkg/sketch"
)

// ErrStaleSystem is returned by System.Solve when the sketch has been
// structurally edited since Compile.
var ErrStaleSystem = errors.New("solver: sketch changed since the system was compiled")

// OverConstrainedError reports relations that cannot be satisfied together.
// Relations is a minimal conflicting set when one could be isolated, and the
// full relation list otherwise.
type OverConstrainedError struct {
	Relations []sketch.RelationID
	Residual  float64
	Minimal   bool
}

func (e *OverConstrainedError) Error() string {
	set := "relations"
	if e.Minimal {
		set = "conflicting relations"
	}
	return fmt.Sprintf("solver: over-constrained: %s %v leave residual %.3g", set, e.Relations, e.Residual)
}

// SolverDivergedError reports an exhausted iteration budget. It is distinct
// from inconsistency: the system may still be solvable with a larger budget
// or a better initial guess.
type SolverDivergedError struct {
	Iterations int
	Residual   float64
}

func (e *SolverDivergedError) Error() string {
	return fmt.Sprintf("solver: no convergence after %d iterations (residual %.3g)", e.Iterations, e.Residual)
}
