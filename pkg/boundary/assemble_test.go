package boundary_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/contour/pkg/boundary"
	"github.com/chazu/contour/pkg/geom"
)

func v(x, y, z float64) geom.Vec { return geom.Vec{X: x, Y: y, Z: z} }

func line(a, b geom.Point) boundary.Element {
	return boundary.LineEdge{Line: geom.TwoPointLine{A: a, B: b}}
}

func arc(t *testing.T, c, s, e geom.Point, dir geom.ArcDirection) boundary.Element {
	t.Helper()
	a, err := geom.NewArcOnPlane(geom.XY, c, s, e, dir)
	if err != nil {
		t.Fatalf("NewArcOnPlane() error = %v", err)
	}
	return boundary.ArcEdge{Arc: a}
}

func wantLoopError(t *testing.T, err error, check boundary.Check) *boundary.InvalidLoopError {
	t.Helper()
	var le *boundary.InvalidLoopError
	if !errors.As(err, &le) {
		t.Fatalf("Assemble() error = %v, want InvalidLoopError", err)
	}
	if le.Check != check {
		t.Fatalf("Check = %v, want %v (%v)", le.Check, check, err)
	}
	return le
}

// ---------------------------------------------------------------------------
// Valid loops
// ---------------------------------------------------------------------------

func TestAssembleTriangle(t *testing.T) {
	loop, err := boundary.Assemble([]boundary.Element{
		line(v(0, 0, 0), v(1, 0, 0)),
		line(v(1, 0, 0), v(1, 1, 0)),
		line(v(1, 1, 0), v(0, 0, 0)),
	}, boundary.DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if loop.Winding != boundary.CounterClockwise || loop.Reversed {
		t.Errorf("Winding = %v, Reversed = %v; want ccw as given", loop.Winding, loop.Reversed)
	}
	if !geom.Near(loop.Normal, v(0, 0, 1), 1e-12) {
		t.Errorf("Normal = %v, want +Z", loop.Normal)
	}
	if math.Abs(loop.Area-0.5) > 1e-12 {
		t.Errorf("Area = %v, want 0.5", loop.Area)
	}
	if got := loop.Vertices(); len(got) != 3 || got[1] != v(1, 0, 0) {
		t.Errorf("Vertices() = %v", got)
	}
}

func TestAssembleReversesWholeLoop(t *testing.T) {
	tests := []struct {
		name  string
		elems []boundary.Element
		opts  boundary.Options
	}{
		{
			name: "clockwise input",
			elems: []boundary.Element{
				line(v(0, 0, 0), v(1, 1, 0)),
				line(v(1, 1, 0), v(1, 0, 0)),
				line(v(1, 0, 0), v(0, 0, 0)),
			},
			opts: boundary.DefaultOptions(),
		},
		{
			name: "clockwise requested",
			elems: []boundary.Element{
				line(v(0, 0, 0), v(1, 0, 0)),
				line(v(1, 0, 0), v(1, 1, 0)),
				line(v(1, 1, 0), v(0, 0, 0)),
			},
			opts: boundary.Options{Winding: boundary.Clockwise},
		},
		{
			name: "explicit opposite normal",
			elems: []boundary.Element{
				line(v(0, 0, 0), v(1, 0, 0)),
				line(v(1, 0, 0), v(1, 1, 0)),
				line(v(1, 1, 0), v(0, 0, 0)),
			},
			opts: boundary.Options{Normal: v(0, 0, -2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop, err := boundary.Assemble(tt.elems, tt.opts)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if !loop.Reversed {
				t.Fatal("loop was not reversed")
			}
			if loop.Winding != tt.opts.Winding {
				t.Errorf("Winding = %v, want %v", loop.Winding, tt.opts.Winding)
			}
			n := len(loop.Edges)
			for i := range loop.Edges {
				if loop.Edges[i].End() != loop.Edges[(i+1)%n].Start() {
					t.Errorf("reversed edge %d does not meet edge %d", i, (i+1)%n)
				}
			}
			if loop.Edges[0].Element != 2 {
				t.Errorf("first reversed edge came from element %d, want 2", loop.Edges[0].Element)
			}
		})
	}
}

func TestAssembleSemicircle(t *testing.T) {
	tests := []struct {
		name     string
		dir      geom.ArcDirection
		reversed bool
	}{
		{"upper half ccw", geom.CounterClockwise, false},
		{"lower half cw", geom.Clockwise, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop, err := boundary.Assemble([]boundary.Element{
				arc(t, v(0, 0, 0), v(1, 0, 0), v(-1, 0, 0), tt.dir),
				line(v(-1, 0, 0), v(1, 0, 0)),
			}, boundary.DefaultOptions())
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if math.Abs(loop.Area-math.Pi/2) > 1e-9 {
				t.Errorf("Area = %v, want π/2", loop.Area)
			}
			if loop.Reversed != tt.reversed {
				t.Errorf("Reversed = %v, want %v", loop.Reversed, tt.reversed)
			}
			first := loop.Edges[0]
			if tt.reversed && (first.Kind != boundary.EdgeLine || first.Start() != v(1, 0, 0)) {
				t.Errorf("first reversed edge = %+v", first)
			}
		})
	}
}

func TestAssembleFlattensPolygons(t *testing.T) {
	square, err := boundary.ClosedPolygon(v(0, 0, 0), v(2, 0, 0), v(2, 2, 0), v(0, 2, 0))
	if err != nil {
		t.Fatal(err)
	}
	chain, err := boundary.NewPolygon(v(0, 0, 0), v(3, 0, 0), v(3, 3, 0))
	if err != nil {
		t.Fatal(err)
	}
	nested := boundary.Polygon{Elements: []boundary.Element{chain, line(v(3, 3, 0), v(0, 3, 0))}}

	tests := []struct {
		name  string
		elems []boundary.Element
		edges int
		area  float64
	}{
		{"closed square", []boundary.Element{square}, 4, 4},
		{"nested chain", []boundary.Element{nested, line(v(0, 3, 0), v(0, 0, 0))}, 4, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop, err := boundary.Assemble(tt.elems, boundary.DefaultOptions())
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if len(loop.Edges) != tt.edges {
				t.Errorf("edges = %d, want %d", len(loop.Edges), tt.edges)
			}
			if math.Abs(loop.Area-tt.area) > 1e-12 {
				t.Errorf("Area = %v, want %v", loop.Area, tt.area)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Rejected loops
// ---------------------------------------------------------------------------

func TestAssembleDiscontinuousPair(t *testing.T) {
	_, err := boundary.Assemble([]boundary.Element{
		line(v(0, 0, 0), v(1, 0, 0)),
		line(v(2, 0, 0), v(3, 1, 0)),
	}, boundary.DefaultOptions())
	le := wantLoopError(t, err, boundary.CheckContinuity)
	if a, b := le.Pair(); a != 0 || b != 1 {
		t.Errorf("Pair() = (%d, %d), want (0, 1)", a, b)
	}
}

func TestAssembleDiscontinuityInsidePolygonNamesTopLevel(t *testing.T) {
	chain, err := boundary.NewPolygon(v(5, 5, 0), v(6, 5, 0))
	if err != nil {
		t.Fatal(err)
	}
	_, err = boundary.Assemble([]boundary.Element{line(v(0, 0, 0), v(1, 0, 0)), chain}, boundary.DefaultOptions())
	le := wantLoopError(t, err, boundary.CheckContinuity)
	if le.Element != 0 || le.OtherElement != 1 {
		t.Errorf("elements = (%d, %d), want (0, 1)", le.Element, le.OtherElement)
	}
}

func TestAssembleOpenLoop(t *testing.T) {
	_, err := boundary.Assemble([]boundary.Element{
		line(v(0, 0, 0), v(1, 0, 0)),
		line(v(1, 0, 0), v(1, 1, 0)),
	}, boundary.DefaultOptions())
	le := wantLoopError(t, err, boundary.CheckClosure)
	if le.Index != 1 || le.Other != 0 {
		t.Errorf("edges = (%d, %d), want (1, 0)", le.Index, le.Other)
	}
}

func TestAssembleSelfIntersecting(t *testing.T) {
	tests := []struct {
		name  string
		elems func(t *testing.T) []boundary.Element
	}{
		{
			name: "bowtie",
			elems: func(*testing.T) []boundary.Element {
				return []boundary.Element{
					line(v(0, 0, 0), v(2, 2, 0)),
					line(v(2, 2, 0), v(2, 0, 0)),
					line(v(2, 0, 0), v(0, 1, 0)),
					line(v(0, 1, 0), v(0, 0, 0)),
				}
			},
		},
		{
			name: "line through arc",
			elems: func(t *testing.T) []boundary.Element {
				return []boundary.Element{
					arc(t, v(1, 0, 0), v(0, 0, 0), v(2, 0, 0), geom.Clockwise),
					line(v(2, 0, 0), v(2, -1, 0)),
					line(v(2, -1, 0), v(1, 2, 0)),
					line(v(1, 2, 0), v(-1, 2, 0)),
					line(v(-1, 2, 0), v(-1, -1, 0)),
					line(v(-1, -1, 0), v(0, 0, 0)),
				}
			},
		},
		{
			name: "arc through arc",
			elems: func(t *testing.T) []boundary.Element {
				return []boundary.Element{
					arc(t, v(0, 0, 0), v(2, 0, 0), v(-2, 0, 0), geom.CounterClockwise),
					line(v(-2, 0, 0), v(-2, 3, 0)),
					arc(t, v(0, 3, 0), v(-2, 3, 0), v(2, 3, 0), geom.CounterClockwise),
					line(v(2, 3, 0), v(2, 0, 0)),
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := boundary.Assemble(tt.elems(t), boundary.DefaultOptions())
			le := wantLoopError(t, err, boundary.CheckSimplicity)
			if le.Index != 0 || le.Other != 2 {
				t.Errorf("edges = (%d, %d), want (0, 2)", le.Index, le.Other)
			}
		})
	}
}

func TestAssembleNonPlanar(t *testing.T) {
	_, err := boundary.Assemble([]boundary.Element{
		line(v(0, 0, 0), v(1, 0, 0)),
		line(v(1, 0, 0), v(1, 1, 0)),
		line(v(1, 1, 0), v(0, 1, 1)),
		line(v(0, 1, 1), v(0, 0, 0)),
	}, boundary.DefaultOptions())
	wantLoopError(t, err, boundary.CheckPlanarity)
}

func TestAssembleDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		elems []boundary.Element
		check boundary.Check
	}{
		{"empty", nil, boundary.CheckElement},
		{"zero-length line", []boundary.Element{line(v(1, 1, 0), v(1, 1, 0))}, boundary.CheckElement},
		{"nil element", []boundary.Element{nil}, boundary.CheckElement},
		{"empty polygon", []boundary.Element{boundary.Polygon{}}, boundary.CheckElement},
		{"back and forth", []boundary.Element{line(v(0, 0, 0), v(1, 0, 0)), line(v(1, 0, 0), v(0, 0, 0))}, boundary.CheckPlanarity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := boundary.Assemble(tt.elems, boundary.DefaultOptions())
			wantLoopError(t, err, tt.check)
		})
	}
}

func TestPolygonConstructors(t *testing.T) {
	if _, err := boundary.NewPolygon(v(0, 0, 0)); err == nil {
		t.Error("NewPolygon() accepted one vertex")
	}
	if _, err := boundary.ClosedPolygon(v(0, 0, 0), v(1, 0, 0)); err == nil {
		t.Error("ClosedPolygon() accepted two vertices")
	}
	_, err := boundary.NewPolygon(v(0, 0, 0), v(0, 0, 0))
	var de *geom.DegenerateInputError
	if !errors.As(err, &de) {
		t.Errorf("NewPolygon(repeated vertex) error = %v, want DegenerateInputError", err)
	}
}
