package solver

import (
	"fmt"
	"log/slog"

	"github.com/chazu/contour/pkg/sketch"
)

// Defaults used when an Options field is zero.
const (
	DefaultTolerance     = 1e-9
	DefaultMaxIterations = 200
	DefaultMaxStep       = 10.0
)

// Options tunes a solve. Zero fields take the package defaults.
type Options struct {
	Tolerance     float64 // residual norm accepted as converged
	MaxIterations int     // iteration budget per solve attempt
	MaxStep       float64 // largest parameter step per iteration
	Logger        *slog.Logger
}

// DefaultOptions returns the package defaults.
func DefaultOptions() Options {
	return Options{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		MaxStep:       DefaultMaxStep,
	}
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MaxStep <= 0 {
		o.MaxStep = DefaultMaxStep
	}
	return o
}

// Status classifies a successful solve.
type Status int

const (
	WellConstrained  Status = iota // zero remaining degrees of freedom
	UnderConstrained               // some parameters remain free
)

func (s Status) String() string {
	switch s {
	case WellConstrained:
		return "well-constrained"
	case UnderConstrained:
		return "under-constrained"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result describes a successful solve.
type Result struct {
	Status     Status
	DOF        int // Params − Rank
	Params     int // free scalar parameters
	Equations  int // scalar equations contributed by relations
	Rank       int // rank of the full equation Jacobian
	Iterations int
	Residual   float64
	Changed    []sketch.ElementID // elements whose parameters were rewritten
}
