package geom_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/contour/pkg/geom"
)

const tol = 1e-9

func near(a, b geom.Point) bool { return geom.Near(a, b, tol) }

func v(x, y, z float64) geom.Vec { return geom.Vec{X: x, Y: y, Z: z} }

// ---------------------------------------------------------------------------
// Plane construction
// ---------------------------------------------------------------------------

func TestNewPlaneNormalizes(t *testing.T) {
	tests := []struct {
		name   string
		normal geom.Vec
	}{
		{"unit z", v(0, 0, 1)},
		{"scaled y", v(0, 7, 0)},
		{"diagonal", v(1, 1, 1)},
		{"tiny but valid", v(1e-6, -2e-6, 3e-6)},
		{"inclined", v(0, 0.5, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := geom.NewPlane(tt.normal, v(1, 2, 3))
			if err != nil {
				t.Fatalf("NewPlane() error = %v", err)
			}
			if got := p.Normal().Length(); math.Abs(got-1) > tol {
				t.Errorf("|normal| = %v, want 1", got)
			}
		})
	}
}

func TestNewPlaneRejectsZeroNormal(t *testing.T) {
	_, err := geom.NewPlane(v(0, 0, 0), v(0, 0, 0))
	var de *geom.DegenerateInputError
	if !errors.As(err, &de) {
		t.Fatalf("NewPlane(zero) error = %v, want DegenerateInputError", err)
	}
}

func TestNamedPlanes(t *testing.T) {
	tests := []struct {
		name   string
		plane  geom.Plane
		normal geom.Vec
	}{
		{"XY", geom.XY, v(0, 0, 1)},
		{"XZ", geom.XZ, v(0, 1, 0)},
		{"YZ", geom.YZ, v(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.plane.Normal() != tt.normal {
				t.Errorf("normal = %v, want %v", tt.plane.Normal(), tt.normal)
			}
			if tt.plane.Center() != (geom.Point{}) {
				t.Errorf("center = %v, want origin", tt.plane.Center())
			}
		})
	}
}

func TestPlaneBasis(t *testing.T) {
	tests := []struct {
		name  string
		plane geom.Plane
		u, v  geom.Vec
	}{
		{"XY", geom.XY, v(1, 0, 0), v(0, 1, 0)},
		{"XZ", geom.XZ, v(1, 0, 0), v(0, 0, -1)},
		{"YZ", geom.YZ, v(0, 1, 0), v(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, w := tt.plane.Basis()
			if !near(u, tt.u) || !near(w, tt.v) {
				t.Errorf("Basis() = (%v, %v), want (%v, %v)", u, w, tt.u, tt.v)
			}
		})
	}

	t.Run("arbitrary normal is right-handed", func(t *testing.T) {
		p, err := geom.NewPlane(v(0.3, -1.2, 2.5), v(4, 5, 6))
		if err != nil {
			t.Fatal(err)
		}
		u, w := p.Basis()
		if math.Abs(u.Length()-1) > tol || math.Abs(w.Length()-1) > tol {
			t.Errorf("basis not unit: |u|=%v |v|=%v", u.Length(), w.Length())
		}
		if math.Abs(u.Dot(w)) > tol || math.Abs(u.Dot(p.Normal())) > tol {
			t.Error("basis not orthogonal")
		}
		if !near(u.Cross(w), p.Normal()) {
			t.Errorf("u × v = %v, want normal %v", u.Cross(w), p.Normal())
		}
	})
}

func TestPlaneLocalRoundTrip(t *testing.T) {
	p, err := geom.NewPlane(v(1, 2, 2), v(1, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	q := p.Project(v(3, -4, 5))
	back := p.FromLocal(p.ToLocal(q))
	if !near(back, q) {
		t.Errorf("FromLocal(ToLocal(q)) = %v, want %v", back, q)
	}
}

// ---------------------------------------------------------------------------
// Point projection
// ---------------------------------------------------------------------------

func TestProjectPointToPlane(t *testing.T) {
	inclined, err := geom.NewPlane(v(0, 1, 1), v(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		plane geom.Plane
		point geom.Point
		want  geom.Point
	}{
		{"onto XZ", geom.XZ, v(5, 7, 2), v(5, 0, 2)},
		{"onto inclined", inclined, v(5, 7, 2), v(5, 2.5, -2.5)},
		{"already on plane", geom.XY, v(3, 4, 0), v(3, 4, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geom.ProjectPointToPlane(tt.point, tt.plane)
			if !near(got, tt.want) {
				t.Errorf("ProjectPointToPlane() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectPointIdempotent(t *testing.T) {
	planes := []geom.Plane{geom.XY, geom.XZ, geom.YZ}
	if p, err := geom.NewPlane(v(-2, 3, 0.5), v(1, 1, 1)); err == nil {
		planes = append(planes, p)
	}
	for _, plane := range planes {
		for x := -2.0; x <= 2; x += 1.5 {
			for y := -2.0; y <= 2; y += 1.5 {
				for z := -2.0; z <= 2; z += 1.5 {
					once := geom.ProjectPointToPlane(v(x, y, z), plane)
					twice := geom.ProjectPointToPlane(once, plane)
					if !near(once, twice) {
						t.Fatalf("%v: projection of %v not idempotent: %v then %v", plane, v(x, y, z), once, twice)
					}
					if d := plane.SignedDistance(once); math.Abs(d) > tol {
						t.Fatalf("%v: projected point %v is %v off the plane", plane, once, d)
					}
				}
			}
		}
	}
}
