// Package kernel is the facade external collaborators use: it holds one
// validated Config and routes sketches and loops through the solver,
// boundary assembler and tessellator with consistent settings and logging.
package kernel

import (
	"fmt"

	"github.com/chazu/contour/pkg/boundary"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
	"github.com/chazu/contour/pkg/solver"
	"github.com/chazu/contour/pkg/tessellate"
)

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Sketches
	Solve(s *sketch.Sketch) (solver.Result, error)
	Tessellate(s *sketch.Sketch) ([]tessellate.Segment, error)
	Ribbon(s *sketch.Sketch) (*tessellate.Mesh, error)

	// Boundary loops
	AssembleLoop(elements []boundary.Element, normal geom.Vec, w boundary.Winding) (*boundary.Loop, error)
	TessellateLoop(l *boundary.Loop) ([]tessellate.Segment, error)
}

// Core is the in-process Kernel. It holds no state besides its Config, so
// one Core may serve many goroutines as long as each sketch is used by one
// caller at a time.
type Core struct {
	cfg Config
}

var _ Kernel = (*Core)(nil)

// New returns a Core for cfg, which must validate.
func New(cfg Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Core{cfg: cfg}, nil
}

// Config returns the configuration the core was built with.
func (c *Core) Config() Config { return c.cfg }

// Solve reconciles the sketch's relations in place.
func (c *Core) Solve(s *sketch.Sketch) (solver.Result, error) {
	log := Logger().With("sketch", s.ID.String(), "name", s.Name)
	log.Debug("solve started", "elements", s.ElementCount(), "relations", len(s.Relations()))

	res, err := solver.Solve(s, c.cfg.SolverOptions())
	if err != nil {
		log.Debug("solve failed", "error", err)
		return res, fmt.Errorf("kernel: solve %q: %w", s.Name, err)
	}
	log.Debug("solve finished",
		"status", res.Status.String(),
		"dof", res.DOF,
		"iterations", res.Iterations,
		"residual", res.Residual,
		"changed", len(res.Changed),
	)
	if res.Status == solver.UnderConstrained {
		log.Warn("sketch is under-constrained", "dof", res.DOF)
	}
	return res, nil
}

// Tessellate flattens the sketch into segments.
func (c *Core) Tessellate(s *sketch.Sketch) ([]tessellate.Segment, error) {
	segs, err := tessellate.Sketch(s, c.cfg.TessellateOptions())
	if err != nil {
		return nil, fmt.Errorf("kernel: tessellate %q: %w", s.Name, err)
	}
	Logger().Debug("sketch tessellated", "sketch", s.ID.String(), "segments", len(segs))
	return segs, nil
}

// Ribbon tessellates the sketch and builds a ribbon mesh in its plane.
func (c *Core) Ribbon(s *sketch.Sketch) (*tessellate.Mesh, error) {
	segs, err := c.Tessellate(s)
	if err != nil {
		return nil, err
	}
	m, err := tessellate.Ribbon(segs, s.Plane(), c.cfg.RibbonWidth)
	if err != nil {
		return nil, fmt.Errorf("kernel: ribbon %q: %w", s.Name, err)
	}
	m.Name = s.Name
	return m, nil
}

// AssembleLoop validates elements as one closed loop. A zero normal lets
// the assembler derive one.
func (c *Core) AssembleLoop(elements []boundary.Element, normal geom.Vec, w boundary.Winding) (*boundary.Loop, error) {
	loop, err := boundary.Assemble(elements, c.cfg.BoundaryOptions(normal, w))
	if err != nil {
		return nil, fmt.Errorf("kernel: assemble loop: %w", err)
	}
	log := Logger()
	log.Debug("loop assembled", "edges", len(loop.Edges), "winding", loop.Winding.String(), "area", loop.Area)
	if loop.Reversed {
		log.Warn("loop was reversed to match winding", "winding", loop.Winding.String())
	}
	return loop, nil
}

// TessellateLoop flattens a validated loop into a closed segment stream.
func (c *Core) TessellateLoop(l *boundary.Loop) ([]tessellate.Segment, error) {
	segs, err := tessellate.Loop(l, c.cfg.TessellateOptions())
	if err != nil {
		return nil, fmt.Errorf("kernel: tessellate loop: %w", err)
	}
	return segs, nil
}
