package geom_test

import (
	"errors"
	"testing"

	"github.com/chazu/contour/pkg/geom"
)

// ---------------------------------------------------------------------------
// Representation conversion
// ---------------------------------------------------------------------------

func TestAsTwoPoint(t *testing.T) {
	tests := []struct {
		name string
		line geom.Line
		a, b geom.Point
	}{
		{
			name: "two-point passes through",
			line: geom.TwoPointLine{A: v(0, 0, 0), B: v(1, 2, 3)},
			a:    v(0, 0, 0), b: v(1, 2, 3),
		},
		{
			name: "parametric samples t=0 and t=1",
			line: geom.ParametricLine{P: v(1, 1, 1), V: v(2, 0, 0)},
			a:    v(1, 1, 1), b: v(3, 1, 1),
		},
		{
			name: "implicit x=2 on XY",
			line: geom.ImplicitLine{A: 1, D: -2},
			a:    v(2, 0, 0), b: v(2, -1, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geom.AsTwoPoint(tt.line)
			if err != nil {
				t.Fatalf("AsTwoPoint() error = %v", err)
			}
			if !near(got.A, tt.a) || !near(got.B, tt.b) {
				t.Errorf("AsTwoPoint() = %v -> %v, want %v -> %v", got.A, got.B, tt.a, tt.b)
			}
		})
	}
}

func TestAsTwoPointImplicitOnReferencePlane(t *testing.T) {
	ref, err := geom.NewPlane(v(0, 0, 1), v(0, 0, 5))
	if err != nil {
		t.Fatal(err)
	}
	l := geom.ImplicitLine{A: 1, B: 1, D: -4, Ref: ref}
	tp, err := geom.AsTwoPoint(l)
	if err != nil {
		t.Fatalf("AsTwoPoint() error = %v", err)
	}
	for _, p := range []geom.Point{tp.A, tp.B} {
		if got := p.X + p.Y - 4; got > tol || got < -tol {
			t.Errorf("%v does not satisfy x + y - 4 = 0 (residual %v)", p, got)
		}
		if p.Z < 5-tol || p.Z > 5+tol {
			t.Errorf("%v is not on the reference plane z=5", p)
		}
	}
}

func TestAsTwoPointFailures(t *testing.T) {
	tests := []struct {
		name string
		line geom.Line
	}{
		{"implicit with zero direction coefficients", geom.ImplicitLine{D: 3}},
		{"implicit parallel to reference", geom.ImplicitLine{C: 1, D: -1}},
		{"parametric with zero direction", geom.ParametricLine{P: v(1, 2, 3)}},
		{"two-point with coincident ends", geom.TwoPointLine{A: v(1, 1, 1), B: v(1, 1, 1)}},
		{"nil line", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geom.AsTwoPoint(tt.line)
			var uc *geom.UnsupportedConversionError
			if !errors.As(err, &uc) {
				t.Fatalf("AsTwoPoint() error = %v, want UnsupportedConversionError", err)
			}
		})
	}
}

func TestAsParametric(t *testing.T) {
	p, err := geom.AsParametric(geom.TwoPointLine{A: v(1, 0, 0), B: v(1, 4, 0)})
	if err != nil {
		t.Fatalf("AsParametric() error = %v", err)
	}
	if p.P != v(1, 0, 0) || p.V != v(0, 4, 0) {
		t.Errorf("AsParametric() = %+v, want P=(1,0,0) V=(0,4,0)", p)
	}

	_, err = geom.AsParametric(geom.ImplicitLine{})
	var uc *geom.UnsupportedConversionError
	if !errors.As(err, &uc) {
		t.Fatalf("AsParametric(zero implicit) error = %v, want UnsupportedConversionError", err)
	}
	if uc.To != geom.LineParametric {
		t.Errorf("conversion target = %v, want parametric", uc.To)
	}
}

func TestNewTwoPointLineRejectsCoincident(t *testing.T) {
	_, err := geom.NewTwoPointLine(v(1, 2, 3), v(1, 2, 3))
	var de *geom.DegenerateInputError
	if !errors.As(err, &de) {
		t.Fatalf("NewTwoPointLine() error = %v, want DegenerateInputError", err)
	}
}

// ---------------------------------------------------------------------------
// Line projection
// ---------------------------------------------------------------------------

func TestProjectLineToPlane(t *testing.T) {
	inclined, err := geom.NewPlane(v(0, 0.5, 0.5), v(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		plane geom.Plane
		line  geom.Line
		a, b  geom.Point
	}{
		{
			name:  "onto XY",
			plane: geom.XY,
			line:  geom.TwoPointLine{A: v(1, 1, 1), B: v(-1, -1, 1)},
			a:     v(1, 1, 0), b: v(-1, -1, 0),
		},
		{
			name:  "onto inclined plane",
			plane: inclined,
			line:  geom.TwoPointLine{A: v(1, 1, 2), B: v(-1, -1, 2)},
			a:     v(1, -0.5, 0.5), b: v(-1, -1.5, 1.5),
		},
		{
			name:  "parametric source",
			plane: geom.XY,
			line:  geom.ParametricLine{P: v(0, 0, 3), V: v(1, 0, 1)},
			a:     v(0, 0, 0), b: v(1, 0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geom.ProjectLineToPlane(tt.line, tt.plane)
			if err != nil {
				t.Fatalf("ProjectLineToPlane() error = %v", err)
			}
			if !near(got.A, tt.a) || !near(got.B, tt.b) {
				t.Errorf("ProjectLineToPlane() = %v -> %v, want %v -> %v", got.A, got.B, tt.a, tt.b)
			}
		})
	}
}

func TestProjectLineParallelToNormal(t *testing.T) {
	_, err := geom.ProjectLineToPlane(geom.TwoPointLine{A: v(1, 1, 0), B: v(1, 1, 5)}, geom.XY)
	var dp *geom.DegenerateProjectionError
	if !errors.As(err, &dp) {
		t.Fatalf("ProjectLineToPlane() error = %v, want DegenerateProjectionError", err)
	}
}

func TestProjectLinePropagatesConversionError(t *testing.T) {
	_, err := geom.ProjectLineToPlane(geom.ImplicitLine{}, geom.XY)
	var uc *geom.UnsupportedConversionError
	if !errors.As(err, &uc) {
		t.Fatalf("ProjectLineToPlane() error = %v, want UnsupportedConversionError", err)
	}
}

// ---------------------------------------------------------------------------
// Offset quads
// ---------------------------------------------------------------------------

func TestGenerateOffsetQuad(t *testing.T) {
	quad, err := geom.GenerateOffsetQuad(geom.TwoPointLine{A: v(0, 0, 1), B: v(2, 0, 1)}, geom.XY, 1)
	if err != nil {
		t.Fatalf("GenerateOffsetQuad() error = %v", err)
	}
	want := [6]geom.Point{
		v(0, -0.5, 0), v(2, -0.5, 0), v(2, 0.5, 0),
		v(0, -0.5, 0), v(2, 0.5, 0), v(0, 0.5, 0),
	}
	for i := range want {
		if !near(quad[i], want[i]) {
			t.Errorf("quad[%d] = %v, want %v", i, quad[i], want[i])
		}
	}
	for tri := 0; tri < 2; tri++ {
		a, b, c := quad[tri*3], quad[tri*3+1], quad[tri*3+2]
		if n := b.Sub(a).Cross(c.Sub(a)); n.Z <= 0 {
			t.Errorf("triangle %d is not counter-clockwise about +Z (normal %v)", tri, n)
		}
	}
}

func TestGenerateOffsetQuadErrors(t *testing.T) {
	line := geom.TwoPointLine{A: v(0, 0, 0), B: v(1, 0, 0)}

	_, err := geom.GenerateOffsetQuad(line, geom.XY, 0)
	var ia *geom.InvalidArgumentError
	if !errors.As(err, &ia) {
		t.Errorf("zero width error = %v, want InvalidArgumentError", err)
	}

	_, err = geom.GenerateOffsetQuad(geom.TwoPointLine{A: v(0, 0, 0), B: v(0, 0, 1)}, geom.XY, 1)
	var dp *geom.DegenerateProjectionError
	if !errors.As(err, &dp) {
		t.Errorf("vertical line error = %v, want DegenerateProjectionError", err)
	}
}
