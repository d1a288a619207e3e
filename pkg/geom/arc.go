package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// ArcDirection is the rotational sense of an arc about its normal.
type ArcDirection int

const (
	Clockwise        ArcDirection = iota // negative rotation about Normal
	CounterClockwise                     // positive (right-hand) rotation about Normal
)

func (d ArcDirection) String() string {
	switch d {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	default:
		return fmt.Sprintf("ArcDirection(%d)", int(d))
	}
}

// Opposite returns the reverse rotational sense.
func (d ArcDirection) Opposite() ArcDirection {
	if d == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

// Circle is a full circle. It is a distinct entity from an Arc whose
// endpoints coincide.
type Circle struct {
	Center Point
	Radius float64
}

// NewCircle returns a circle with positive radius.
func NewCircle(center Point, radius float64) (Circle, error) {
	if !Finite(center) || !finite(radius) {
		return Circle{}, &DegenerateInputError{Op: "circle", Reason: "non-finite input"}
	}
	if radius <= 0 {
		return Circle{}, &DegenerateInputError{Op: "circle", Reason: fmt.Sprintf("radius %g is not positive", radius)}
	}
	return Circle{Center: center, Radius: radius}, nil
}

// Arc is a circular arc from Start to End about Center. Normal is the unit
// reference axis the Direction is measured against.
type Arc struct {
	Center    Point
	Radius    float64
	Start     Point
	End       Point
	Direction ArcDirection
	Normal    Vec
}

// NewArc builds an arc whose normal is derived from
// (start − center) × (end − center). That axis is undefined for
// semicircles; use NewArcOnPlane for those.
func NewArc(center, start, end Point, dir ArcDirection) (Arc, error) {
	s := start.Sub(center)
	e := end.Sub(center)
	axis := s.Cross(e)
	if axis.Length() <= Epsilon*math.Max(1, s.Length()*e.Length()) {
		return Arc{}, &DegenerateInputError{Op: "arc", Reason: "start and end are collinear with the center; supply a plane"}
	}
	a := Arc{
		Center:    center,
		Radius:    s.Length(),
		Start:     start,
		End:       end,
		Direction: dir,
		Normal:    axis.Normalize(),
	}
	if err := a.Validate(); err != nil {
		return Arc{}, err
	}
	return a, nil
}

// NewArcOnPlane builds an arc whose normal is the plane normal. The arc's
// radial vectors must be perpendicular to that normal.
func NewArcOnPlane(plane Plane, center, start, end Point, dir ArcDirection) (Arc, error) {
	a := Arc{
		Center:    center,
		Radius:    start.Sub(center).Length(),
		Start:     start,
		End:       end,
		Direction: dir,
		Normal:    plane.Normal(),
	}
	if err := a.Validate(); err != nil {
		return Arc{}, err
	}
	return a, nil
}

// Validate checks the arc invariants: positive radius, both endpoints on the
// circle, distinct endpoints and a unit normal perpendicular to the radial
// vectors.
func (a Arc) Validate() error {
	if !Finite(a.Center) || !Finite(a.Start) || !Finite(a.End) || !Finite(a.Normal) || !finite(a.Radius) {
		return &DegenerateInputError{Op: "arc", Reason: "non-finite input"}
	}
	if a.Radius <= Epsilon {
		return &DegenerateInputError{Op: "arc", Reason: fmt.Sprintf("radius %g is not positive", a.Radius)}
	}
	if math.Abs(a.Normal.Length()-1) > 1e-6 {
		return &DegenerateInputError{Op: "arc", Reason: "normal is not unit length"}
	}
	tol := RadiusTolerance * math.Max(1, a.Radius)
	s := a.Start.Sub(a.Center)
	e := a.End.Sub(a.Center)
	if math.Abs(s.Length()-a.Radius) > tol || math.Abs(e.Length()-a.Radius) > tol {
		return &DegenerateInputError{Op: "arc", Reason: "endpoints are not on the arc's circle"}
	}
	if Near(a.Start, a.End, tol) {
		return &DegenerateInputError{Op: "arc", Reason: "start equals end; use a Circle"}
	}
	if math.Abs(s.Dot(a.Normal)) > tol || math.Abs(e.Dot(a.Normal)) > tol {
		return &DegenerateInputError{Op: "arc", Reason: "arc does not lie in the plane of its normal"}
	}
	return nil
}

// Sweep returns the angle swept from Start to End in Direction, in (0, 2π).
func (a Arc) Sweep() float64 {
	s := a.Start.Sub(a.Center)
	e := a.End.Sub(a.Center)
	theta := math.Atan2(a.Normal.Dot(s.Cross(e)), s.Dot(e))
	if theta <= 0 {
		theta += 2 * math.Pi
	}
	if a.Direction == Clockwise {
		return 2*math.Pi - theta
	}
	return theta
}

// SignedSweep is Sweep with the sign of the rotation about Normal.
func (a Arc) SignedSweep() float64 {
	if a.Direction == Clockwise {
		return -a.Sweep()
	}
	return a.Sweep()
}

// Length returns the arc length.
func (a Arc) Length() float64 { return a.Radius * a.Sweep() }

// PointAt returns the point reached after travelling fraction t of the
// sweep from Start. PointAt(0) and PointAt(1) return Start and End exactly.
func (a Arc) PointAt(t float64) Point {
	switch t {
	case 0:
		return a.Start
	case 1:
		return a.End
	}
	return a.rotateStart(t * a.SignedSweep())
}

func (a Arc) rotateStart(angle float64) Point {
	m := sdf.Rotate3d(a.Normal, angle)
	return a.Center.Add(m.MulPosition(a.Start.Sub(a.Center)))
}

// Reverse returns the same curve traversed from End to Start.
func (a Arc) Reverse() Arc {
	r := a
	r.Start, r.End = a.End, a.Start
	r.Direction = a.Direction.Opposite()
	return r
}

// Circle returns the arc's supporting circle.
func (a Arc) Circle() Circle { return Circle{Center: a.Center, Radius: a.Radius} }

// Bounds returns a conservative axis-aligned box around the arc.
func (a Arc) Bounds() sdf.Box3 {
	const samples = 64
	pts := make([]Point, 0, samples+1)
	for i := 0; i <= samples; i++ {
		pts = append(pts, a.PointAt(float64(i)/samples))
	}
	bb := Bounds(pts...)
	sag := a.Radius * (1 - math.Cos(a.Sweep()/samples/2))
	pad := Vec{X: sag, Y: sag, Z: sag}
	return sdf.Box3{Min: bb.Min.Sub(pad), Max: bb.Max.Add(pad)}
}

// ArcToPolyline subdivides arc into segments consecutive chords by rotating
// the start vector about the arc axis in equal steps of the signed sweep.
// Vertices are computed once from the start vector, so chord i ends exactly
// where chord i+1 begins, and the final vertex is pinned to End.
func ArcToPolyline(arc Arc, segments int) ([]TwoPointLine, error) {
	if segments < 1 {
		return nil, &InvalidArgumentError{Op: "arc to polyline", Arg: "segment count", Reason: fmt.Sprintf("%d is less than 1", segments)}
	}
	if err := arc.Validate(); err != nil {
		return nil, err
	}
	step := arc.SignedSweep() / float64(segments)

	verts := make([]Point, segments+1)
	verts[0] = arc.Start
	for i := 1; i < segments; i++ {
		verts[i] = arc.rotateStart(float64(i) * step)
	}
	verts[segments] = arc.End

	out := make([]TwoPointLine, segments)
	for i := range out {
		out[i] = TwoPointLine{A: verts[i], B: verts[i+1]}
	}
	return out, nil
}
