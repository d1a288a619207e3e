package kernel_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/chazu/contour/pkg/boundary"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/sketch"
	"github.com/chazu/contour/pkg/solver"
)

func v(x, y, z float64) geom.Vec { return geom.Vec{X: x, Y: y, Z: z} }

func newCore(t *testing.T) *kernel.Core {
	t.Helper()
	k, err := kernel.New(kernel.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

// captureLogs routes kernel logs into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	kernel.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { kernel.SetLogger(nil) })
	return &buf
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

func TestConfigValidate(t *testing.T) {
	if err := kernel.DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*kernel.Config)
		arg    string
	}{
		{"zero segments", func(c *kernel.Config) { c.Segments = 0 }, "segments"},
		{"zero iterations", func(c *kernel.Config) { c.MaxIterations = 0 }, "max_iterations"},
		{"negative length cap", func(c *kernel.Config) { c.MaxSegmentLength = -1 }, "max_segment_length"},
		{"zero tolerance", func(c *kernel.Config) { c.Tolerance = 0 }, "tolerance"},
		{"negative step", func(c *kernel.Config) { c.MaxStep = -3 }, "max_step"},
		{"zero closure", func(c *kernel.Config) { c.ClosureEpsilon = 0 }, "closure_epsilon"},
		{"zero ribbon", func(c *kernel.Config) { c.RibbonWidth = 0 }, "ribbon_width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := kernel.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var ia *geom.InvalidArgumentError
			if !errors.As(err, &ia) {
				t.Fatalf("Validate() = %v, want InvalidArgumentError", err)
			}
			if ia.Arg != tt.arg {
				t.Errorf("Arg = %q, want %q", ia.Arg, tt.arg)
			}
			if _, err := kernel.New(cfg); err == nil {
				t.Error("New() accepted an invalid config")
			}
		})
	}
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	if kernel.Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
}

// ---------------------------------------------------------------------------
// Sketches
// ---------------------------------------------------------------------------

func TestSolveUnderConstrainedWarns(t *testing.T) {
	logs := captureLogs(t)
	k := newCore(t)

	s := sketch.New("warn", geom.XY)
	l, err := s.AddLine(geom.TwoPointLine{A: v(0, 0, 0), B: v(1, 0, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddRelation(sketch.Horizontal, l); err != nil {
		t.Fatal(err)
	}

	res, err := k.Solve(s)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if res.Status != solver.UnderConstrained {
		t.Errorf("Status = %v, want under-constrained", res.Status)
	}
	out := logs.String()
	for _, want := range []string{"solve finished", "sketch is under-constrained", s.ID.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}
}

func TestSolveWrapsSolverErrors(t *testing.T) {
	k := newCore(t)
	s := sketch.New("conflict", geom.XY)
	p, _ := s.AddPoint(v(0, 0, 0))
	q, _ := s.AddPoint(v(1, 0, 0))
	for _, r := range []struct {
		kind sketch.RelationKind
		ids  []sketch.ElementID
	}{
		{sketch.Fixed, []sketch.ElementID{p}},
		{sketch.Fixed, []sketch.ElementID{q}},
		{sketch.Coincident, []sketch.ElementID{p, q}},
	} {
		if _, err := s.AddRelation(r.kind, r.ids...); err != nil {
			t.Fatal(err)
		}
	}

	_, err := k.Solve(s)
	var oc *solver.OverConstrainedError
	if !errors.As(err, &oc) {
		t.Fatalf("Solve() error = %v, want OverConstrainedError", err)
	}
	if !strings.HasPrefix(err.Error(), "kernel: solve") {
		t.Errorf("error %q is not wrapped", err)
	}
}

func TestRibbonNamesMesh(t *testing.T) {
	k := newCore(t)
	s := sketch.New("ribbon", geom.XY)
	if _, err := s.AddLine(geom.TwoPointLine{A: v(0, 0, 0), B: v(1, 0, 0)}); err != nil {
		t.Fatal(err)
	}
	m, err := k.Ribbon(s)
	if err != nil {
		t.Fatalf("Ribbon() error = %v", err)
	}
	if m.Name != "ribbon" || m.VertexCount() != 4 || m.TriangleCount() != 2 {
		t.Errorf("mesh %q has %d vertices, %d triangles", m.Name, m.VertexCount(), m.TriangleCount())
	}
}

// ---------------------------------------------------------------------------
// Loops
// ---------------------------------------------------------------------------

func TestAssembleAndTessellateLoop(t *testing.T) {
	logs := captureLogs(t)
	k := newCore(t)

	square, err := boundary.ClosedPolygon(v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	loop, err := k.AssembleLoop([]boundary.Element{square}, geom.Vec{}, boundary.CounterClockwise)
	if err != nil {
		t.Fatalf("AssembleLoop() error = %v", err)
	}
	if !loop.Reversed {
		t.Error("clockwise square was not reversed")
	}
	if !strings.Contains(logs.String(), "loop was reversed") {
		t.Errorf("logs missing reversal warning:\n%s", logs)
	}

	segs, err := k.TessellateLoop(loop)
	if err != nil {
		t.Fatalf("TessellateLoop() error = %v", err)
	}
	if len(segs) != 4 || segs[3].B != segs[0].A {
		t.Errorf("segments = %v", segs)
	}
}

func TestAssembleLoopWrapsErrors(t *testing.T) {
	k := newCore(t)
	_, err := k.AssembleLoop([]boundary.Element{
		boundary.LineEdge{Line: geom.TwoPointLine{A: v(0, 0, 0), B: v(1, 0, 0)}},
		boundary.LineEdge{Line: geom.TwoPointLine{A: v(2, 0, 0), B: v(3, 1, 0)}},
	}, geom.Vec{}, boundary.CounterClockwise)
	var le *boundary.InvalidLoopError
	if !errors.As(err, &le) || le.Check != boundary.CheckContinuity {
		t.Errorf("AssembleLoop() error = %v, want continuity InvalidLoopError", err)
	}
}
