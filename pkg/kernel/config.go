package kernel

import (
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/boundary"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/solver"
	"github.com/chazu/contour/pkg/tessellate"
)

// DefaultRibbonWidth is the width of ribbon meshes built for display.
const DefaultRibbonWidth = 0.1

// Config holds every tunable the kernel accepts. It is loaded from YAML by
// the command line tool.
type Config struct {
	Segments         int     `yaml:"segments"`           // chords per arc
	MaxSegmentLength float64 `yaml:"max_segment_length"` // 0 disables the length cap
	Tolerance        float64 `yaml:"tolerance"`          // solver convergence residual
	MaxIterations    int     `yaml:"max_iterations"`     // solver iteration budget
	MaxStep          float64 `yaml:"max_step"`           // largest solver step
	ClosureEpsilon   float64 `yaml:"closure_epsilon"`    // loop closure and intersection tolerance
	RibbonWidth      float64 `yaml:"ribbon_width"`
}

// DefaultConfig returns the kernel defaults.
func DefaultConfig() Config {
	return Config{
		Segments:       tessellate.DefaultSegments,
		Tolerance:      solver.DefaultTolerance,
		MaxIterations:  solver.DefaultMaxIterations,
		MaxStep:        solver.DefaultMaxStep,
		ClosureEpsilon: boundary.DefaultEpsilon,
		RibbonWidth:    DefaultRibbonWidth,
	}
}

// Validate reports the first field that is out of range.
func (c Config) Validate() error {
	positive := func(name string, f float64) error {
		if !(f > 0) || math.IsInf(f, 1) {
			return &geom.InvalidArgumentError{Op: "kernel config", Arg: name, Reason: fmt.Sprintf("%g is not a positive finite number", f)}
		}
		return nil
	}
	if c.Segments < 1 {
		return &geom.InvalidArgumentError{Op: "kernel config", Arg: "segments", Reason: fmt.Sprintf("%d is less than 1", c.Segments)}
	}
	if c.MaxIterations < 1 {
		return &geom.InvalidArgumentError{Op: "kernel config", Arg: "max_iterations", Reason: fmt.Sprintf("%d is less than 1", c.MaxIterations)}
	}
	if c.MaxSegmentLength != 0 {
		if err := positive("max_segment_length", c.MaxSegmentLength); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"tolerance", c.Tolerance},
		{"max_step", c.MaxStep},
		{"closure_epsilon", c.ClosureEpsilon},
		{"ribbon_width", c.RibbonWidth},
	} {
		if err := positive(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// SolverOptions maps the config onto solver options.
func (c Config) SolverOptions() solver.Options {
	return solver.Options{
		Tolerance:     c.Tolerance,
		MaxIterations: c.MaxIterations,
		MaxStep:       c.MaxStep,
		Logger:        Logger(),
	}
}

// TessellateOptions maps the config onto tessellation options.
func (c Config) TessellateOptions() tessellate.Options {
	return tessellate.Options{Segments: c.Segments, MaxSegmentLength: c.MaxSegmentLength}
}

// BoundaryOptions maps the config onto loop assembly options for the given
// reference normal and winding.
func (c Config) BoundaryOptions(normal geom.Vec, w boundary.Winding) boundary.Options {
	return boundary.Options{Epsilon: c.ClosureEpsilon, Normal: normal, Winding: w}
}
