package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the default absolute tolerance for coincidence tests.
const Epsilon = 1e-9

// RadiusTolerance is the relative tolerance used when checking that arc
// endpoints lie on the arc's circle.
const RadiusTolerance = 1e-6

// Vec is a 3D displacement.
type Vec = v3.Vec

// Point is a 3D position. It shares Vec's representation.
type Point = v3.Vec

// Unit axis vectors.
var (
	AxisX = Vec{X: 1}
	AxisY = Vec{Y: 1}
	AxisZ = Vec{Z: 1}
)

// Near reports whether a and b are within eps of each other.
func Near(a, b Point, eps float64) bool {
	return a.Sub(b).Length() <= eps
}

// Finite reports whether all components of v are finite.
func Finite(v Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Bounds returns the axis-aligned box enclosing pts.
func Bounds(pts ...Point) sdf.Box3 {
	if len(pts) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		bb.Min = bb.Min.Min(p)
		bb.Max = bb.Max.Max(p)
	}
	return bb
}

