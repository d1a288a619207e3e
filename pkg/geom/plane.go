package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Plane is the set of points p with normal·(p − center) = 0. The normal is
// always unit length; planes are only built through NewPlane or the named
// constants, so the invariant holds for every Plane value in circulation.
type Plane struct {
	normal Vec
	center Point
}

// Canonical axis-aligned planes through the origin. They are plain values;
// copying one never aliases state.
var (
	XY = Plane{normal: AxisZ}
	XZ = Plane{normal: AxisY}
	YZ = Plane{normal: AxisX}
)

// NewPlane returns the plane through center with the given normal, which is
// normalized. A normal of near-zero length is rejected.
func NewPlane(normal Vec, center Point) (Plane, error) {
	if !Finite(normal) || !Finite(center) {
		return Plane{}, &DegenerateInputError{Op: "plane", Reason: "non-finite coordinates"}
	}
	l := normal.Length()
	if l < Epsilon {
		return Plane{}, &DegenerateInputError{Op: "plane", Reason: "normal has zero length"}
	}
	return Plane{normal: normal.DivScalar(l), center: center}, nil
}

// Normal returns the unit normal.
func (p Plane) Normal() Vec { return p.normal }

// Center returns the reference point of the plane.
func (p Plane) Center() Point { return p.center }

// IsZero reports whether p is the zero Plane value, which is not a valid plane.
func (p Plane) IsZero() bool { return p.normal == Vec{} }

// SignedDistance returns the distance from q to the plane, positive on the
// side the normal points to.
func (p Plane) SignedDistance(q Point) float64 {
	return q.Sub(p.center).Dot(p.normal)
}

// Project returns the orthogonal projection of q onto the plane.
func (p Plane) Project(q Point) Point {
	return ProjectPointToPlane(q, p)
}

// Basis returns a right-handed orthonormal pair (u, v) spanning the plane,
// with u × v = normal. u is the canonical axis least aligned with the normal
// (ties resolved X, Y, Z), so XY yields (X, Y), XZ yields (X, −Z) and YZ
// yields (Y, Z). Sketch relations treat u as horizontal and v as vertical.
func (p Plane) Basis() (u, v Vec) {
	axes := [3]Vec{AxisX, AxisY, AxisZ}
	best := 0
	bestDot := math.Inf(1)
	for i, a := range axes {
		if d := math.Abs(a.Dot(p.normal)); d < bestDot-Epsilon {
			best, bestDot = i, d
		}
	}
	a := axes[best]
	u = a.Sub(p.normal.MulScalar(a.Dot(p.normal))).Normalize()
	v = p.normal.Cross(u)
	return u, v
}

// ToLocal expresses q, projected onto the plane, in the plane's (u, v) basis
// with the plane center as origin.
func (p Plane) ToLocal(q Point) v2.Vec {
	u, v := p.Basis()
	d := q.Sub(p.center)
	return v2.Vec{X: d.Dot(u), Y: d.Dot(v)}
}

// FromLocal maps in-plane coordinates back to 3D.
func (p Plane) FromLocal(q v2.Vec) Point {
	u, v := p.Basis()
	return p.center.Add(u.MulScalar(q.X)).Add(v.MulScalar(q.Y))
}

func (p Plane) String() string {
	return fmt.Sprintf("plane(n=%.4g,%.4g,%.4g c=%.4g,%.4g,%.4g)",
		p.normal.X, p.normal.Y, p.normal.Z, p.center.X, p.center.Y, p.center.Z)
}

// ProjectPointToPlane returns q − ((q − center)·n)·n. Projecting a point
// that already lies on the plane returns it unchanged up to rounding.
func ProjectPointToPlane(q Point, plane Plane) Point {
	dist := q.Sub(plane.center).Dot(plane.normal)
	return q.Sub(plane.normal.MulScalar(dist))
}

// ProjectLineToPlane projects both endpoints of the line's two-point form
// onto plane. It fails with DegenerateProjectionError when the projected
// endpoints coincide, which happens when the line is parallel to the normal.
func ProjectLineToPlane(l Line, plane Plane) (TwoPointLine, error) {
	tp, err := AsTwoPoint(l)
	if err != nil {
		return TwoPointLine{}, err
	}
	a := ProjectPointToPlane(tp.A, plane)
	b := ProjectPointToPlane(tp.B, plane)
	if Near(a, b, Epsilon) {
		return TwoPointLine{}, &DegenerateProjectionError{Reason: "line is parallel to the plane normal"}
	}
	return TwoPointLine{A: a, B: b}, nil
}
