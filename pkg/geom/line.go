package geom

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
)

// LineKind names the representation carried by a Line.
type LineKind int

const (
	LineParametric LineKind = iota // origin + direction
	LineTwoPoint                   // two distinct points
	LineImplicit                   // plane-intersection coefficients
)

func (k LineKind) String() string {
	switch k {
	case LineParametric:
		return "parametric"
	case LineTwoPoint:
		return "two-point"
	case LineImplicit:
		return "implicit"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// Line is a tagged union over the three interchangeable line
// representations. Only ParametricLine, TwoPointLine and ImplicitLine
// implement it. Parametric and implicit lines are unbounded; a two-point
// line additionally bounds a segment.
type Line interface {
	Kind() LineKind
	line() // restricts implementations to this package
}

// ParametricLine is P(t) = P + t·V. V need not be unit length.
type ParametricLine struct {
	P Point
	V Vec
}

func (ParametricLine) Kind() LineKind { return LineParametric }
func (ParametricLine) line()          {}

// NewParametricLine returns the line through p with direction v.
func NewParametricLine(p Point, v Vec) (ParametricLine, error) {
	if !Finite(p) || !Finite(v) {
		return ParametricLine{}, &DegenerateInputError{Op: "parametric line", Reason: "non-finite coordinates"}
	}
	if v.Length() < Epsilon {
		return ParametricLine{}, &DegenerateInputError{Op: "parametric line", Reason: "direction has zero length"}
	}
	return ParametricLine{P: p, V: v}, nil
}

// PointAt returns P + t·V.
func (l ParametricLine) PointAt(t float64) Point {
	return l.P.Add(l.V.MulScalar(t))
}

// TwoPointLine is the line through A and B, bounded to the segment AB where
// a bound matters.
type TwoPointLine struct {
	A, B Point
}

func (TwoPointLine) Kind() LineKind { return LineTwoPoint }
func (TwoPointLine) line()          {}

// NewTwoPointLine returns the line through a and b, which must be distinct.
func NewTwoPointLine(a, b Point) (TwoPointLine, error) {
	if !Finite(a) || !Finite(b) {
		return TwoPointLine{}, &DegenerateInputError{Op: "two-point line", Reason: "non-finite coordinates"}
	}
	if Near(a, b, Epsilon) {
		return TwoPointLine{}, &DegenerateInputError{Op: "two-point line", Reason: "endpoints coincide"}
	}
	return TwoPointLine{A: a, B: b}, nil
}

// Vector returns B − A.
func (l TwoPointLine) Vector() Vec { return l.B.Sub(l.A) }

// Direction returns the unit vector from A to B.
func (l TwoPointLine) Direction() Vec { return l.B.Sub(l.A).Normalize() }

// Length returns |B − A|.
func (l TwoPointLine) Length() float64 { return l.B.Sub(l.A).Length() }

// Midpoint returns (A + B) / 2.
func (l TwoPointLine) Midpoint() Point { return l.A.Add(l.B).MulScalar(0.5) }

// PointAt returns A + t·(B − A).
func (l TwoPointLine) PointAt(t float64) Point {
	return l.A.Add(l.B.Sub(l.A).MulScalar(t))
}

// Reverse swaps the endpoints.
func (l TwoPointLine) Reverse() TwoPointLine { return TwoPointLine{A: l.B, B: l.A} }

// Bounds returns the segment's axis-aligned bounding box.
func (l TwoPointLine) Bounds() sdf.Box3 { return Bounds(l.A, l.B) }

// DistanceTo returns the distance from q to the unbounded line through A, B.
func (l TwoPointLine) DistanceTo(q Point) float64 {
	d := l.B.Sub(l.A)
	return q.Sub(l.A).Cross(d).Length() / d.Length()
}

// ImplicitLine is the intersection of the plane A·x + B·y + C·z + D = 0
// with a reference plane. A zero Ref means XY.
type ImplicitLine struct {
	A, B, C, D float64
	Ref        Plane
}

func (ImplicitLine) Kind() LineKind { return LineImplicit }
func (ImplicitLine) line()          {}

func (l ImplicitLine) reference() Plane {
	if l.Ref.IsZero() {
		return XY
	}
	return l.Ref
}

// pointAndDirection solves the two-plane intersection. The returned point
// is the one closest to the origin of the two-plane system.
func (l ImplicitLine) pointAndDirection() (Point, Vec, error) {
	n := Vec{X: l.A, Y: l.B, Z: l.C}
	if !Finite(n) || !finite(l.D) {
		return Point{}, Vec{}, &UnsupportedConversionError{From: LineImplicit, To: LineTwoPoint, Reason: "non-finite coefficients"}
	}
	if n.Length() < Epsilon {
		return Point{}, Vec{}, &UnsupportedConversionError{From: LineImplicit, To: LineTwoPoint, Reason: "direction coefficients are all zero"}
	}
	ref := l.reference()
	m := ref.Normal()
	dir := n.Cross(m)
	den := dir.Length2()
	if den < Epsilon*Epsilon*n.Length2() {
		return Point{}, Vec{}, &UnsupportedConversionError{From: LineImplicit, To: LineTwoPoint, Reason: "plane is parallel to the reference plane"}
	}
	h1 := -l.D
	h2 := m.Dot(ref.Center())
	nm := n.Dot(m)
	p := n.MulScalar(h1*m.Length2() - h2*nm).Add(m.MulScalar(h2*n.Length2() - h1*nm)).DivScalar(den)
	return p, dir.Normalize(), nil
}

// AsTwoPoint converts any line to two-point form. Parametric lines yield
// P(0) and P(1); implicit lines yield the intersection point and a unit step
// along the intersection direction. Conversions that cannot produce two
// distinct finite points fail with UnsupportedConversionError.
func AsTwoPoint(l Line) (TwoPointLine, error) {
	switch v := l.(type) {
	case TwoPointLine:
		if !Finite(v.A) || !Finite(v.B) || Near(v.A, v.B, Epsilon) {
			return TwoPointLine{}, &UnsupportedConversionError{From: LineTwoPoint, To: LineTwoPoint, Reason: "endpoints are not two distinct finite points"}
		}
		return v, nil
	case ParametricLine:
		if !Finite(v.P) || !Finite(v.V) || v.V.Length() < Epsilon {
			return TwoPointLine{}, &UnsupportedConversionError{From: LineParametric, To: LineTwoPoint, Reason: "direction is zero or non-finite"}
		}
		return TwoPointLine{A: v.PointAt(0), B: v.PointAt(1)}, nil
	case ImplicitLine:
		p, d, err := v.pointAndDirection()
		if err != nil {
			return TwoPointLine{}, err
		}
		return TwoPointLine{A: p, B: p.Add(d)}, nil
	case nil:
		return TwoPointLine{}, &UnsupportedConversionError{From: -1, To: LineTwoPoint, Reason: "nil line"}
	default:
		return TwoPointLine{}, &UnsupportedConversionError{From: l.Kind(), To: LineTwoPoint, Reason: fmt.Sprintf("unknown representation %T", l)}
	}
}

// AsParametric converts any line to parametric form with P at the first
// point of the two-point form and V = B − A.
func AsParametric(l Line) (ParametricLine, error) {
	if p, ok := l.(ParametricLine); ok {
		if !Finite(p.P) || !Finite(p.V) || p.V.Length() < Epsilon {
			return ParametricLine{}, &UnsupportedConversionError{From: LineParametric, To: LineParametric, Reason: "direction is zero or non-finite"}
		}
		return p, nil
	}
	tp, err := AsTwoPoint(l)
	if err != nil {
		var uc *UnsupportedConversionError
		if errors.As(err, &uc) {
			uc.To = LineParametric
		}
		return ParametricLine{}, err
	}
	return ParametricLine{P: tp.A, V: tp.B.Sub(tp.A)}, nil
}

// GenerateOffsetQuad builds a ribbon of the given width centred on the line,
// projected onto plane and extruded sideways within the plane. The six
// points form two counter-clockwise triangles (relative to the plane
// normal) sharing the quad's diagonal.
func GenerateOffsetQuad(l Line, plane Plane, width float64) ([6]Point, error) {
	var quad [6]Point
	if !(width > 0) || !finite(width) {
		return quad, &InvalidArgumentError{Op: "offset quad", Arg: "width", Reason: fmt.Sprintf("%g is not a positive finite number", width)}
	}
	tp, err := ProjectLineToPlane(l, plane)
	if err != nil {
		return quad, err
	}
	side := plane.Normal().Cross(tp.Direction()).MulScalar(width / 2)

	a0, a1 := tp.A.Sub(side), tp.A.Add(side)
	b0, b1 := tp.B.Sub(side), tp.B.Add(side)
	quad = [6]Point{a0, b0, b1, a0, b1, a1}
	return quad, nil
}
