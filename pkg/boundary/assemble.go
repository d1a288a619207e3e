package boundary

import (
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/geom"
)

// DefaultEpsilon is the default closure and intersection tolerance.
const DefaultEpsilon = 1e-6

// maxDepth bounds polygon nesting during flattening.
const maxDepth = 64

// Winding is the rotational sense of a loop about its normal.
type Winding int

const (
	CounterClockwise Winding = iota
	Clockwise
)

func (w Winding) String() string {
	switch w {
	case CounterClockwise:
		return "ccw"
	case Clockwise:
		return "cw"
	default:
		return fmt.Sprintf("Winding(%d)", int(w))
	}
}

// Options tunes Assemble. Zero fields take defaults.
type Options struct {
	Epsilon float64  // closure and intersection tolerance
	Normal  geom.Vec // reference normal; zero derives one from the loop
	Winding Winding  // required sense about Normal
}

// DefaultOptions returns a counter-clockwise loop with DefaultEpsilon and a
// derived normal.
func DefaultOptions() Options {
	return Options{Epsilon: DefaultEpsilon}
}

// Loop is a validated boundary loop.
type Loop struct {
	Edges    []Edge
	Normal   geom.Vec // unit reference normal
	Winding  Winding
	Area     float64 // enclosed area, always positive
	Reversed bool    // the input was reversed to reach Winding
}

// Vertices returns the start point of every edge.
func (l *Loop) Vertices() []geom.Point {
	pts := make([]geom.Point, len(l.Edges))
	for i, e := range l.Edges {
		pts[i] = e.Start()
	}
	return pts
}

// Assemble validates elements as a single closed loop.
func Assemble(elements []Element, opts Options) (*Loop, error) {
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}
	eps := opts.Epsilon

	edges, err := flatten(elements)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, &InvalidLoopError{Check: CheckElement, Index: -1, Other: -1, Element: -1, OtherElement: -1, Reason: "loop has no edges"}
	}
	if err := checkContinuity(edges, eps); err != nil {
		return nil, err
	}
	if err := checkClosure(edges, eps); err != nil {
		return nil, err
	}
	normal, err := referenceNormal(edges, opts.Normal)
	if err != nil {
		return nil, err
	}
	plane, err := geom.NewPlane(normal, edges[0].Start())
	if err != nil {
		return nil, err
	}
	if err := checkPlanarity(edges, plane, eps); err != nil {
		return nil, err
	}
	if err := checkSimplicity(edges, plane, eps); err != nil {
		return nil, err
	}

	area := signedArea(edges, plane)
	if math.Abs(area) <= eps*eps {
		return nil, &InvalidLoopError{Check: CheckWinding, Index: -1, Other: -1, Element: -1, OtherElement: -1, Reason: "loop encloses no area"}
	}
	got := CounterClockwise
	if area < 0 {
		got = Clockwise
	}

	loop := &Loop{Edges: edges, Normal: plane.Normal(), Winding: opts.Winding, Area: math.Abs(area)}
	if got != opts.Winding {
		loop.Edges = reverseEdges(edges)
		loop.Reversed = true
		if err := checkContinuity(loop.Edges, eps); err != nil {
			return nil, err
		}
	}
	return loop, nil
}

// flatten expands polygons into primitive edges with an explicit stack.
func flatten(elements []Element) ([]Edge, error) {
	type frame struct {
		elems []Element
		next  int
	}
	var edges []Edge
	for top, el := range elements {
		stack := []frame{{elems: []Element{el}}}
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next == len(f.elems) {
				stack = stack[:len(stack)-1]
				continue
			}
			e := f.elems[f.next]
			f.next++

			fail := func(reason string) error {
				return &InvalidLoopError{Check: CheckElement, Index: len(edges), Other: -1, Element: top, OtherElement: -1, Reason: reason}
			}
			switch e := e.(type) {
			case LineEdge:
				if !geom.Finite(e.Line.A) || !geom.Finite(e.Line.B) || e.Line.Length() < geom.Epsilon {
					return nil, fail("line has zero length")
				}
				edges = append(edges, Edge{Kind: EdgeLine, Line: e.Line, Element: top})
			case ArcEdge:
				if err := e.Arc.Validate(); err != nil {
					return nil, fail(err.Error())
				}
				edges = append(edges, Edge{Kind: EdgeArc, Arc: e.Arc, Element: top})
			case Polygon:
				if len(stack) >= maxDepth {
					return nil, fail(fmt.Sprintf("polygons nested deeper than %d", maxDepth))
				}
				stack = append(stack, frame{elems: e.Elements})
			case nil:
				return nil, fail("nil element")
			default:
				return nil, fail(fmt.Sprintf("unsupported element %T", e))
			}
		}
	}
	return edges, nil
}

func checkContinuity(edges []Edge, eps float64) error {
	for i := 0; i+1 < len(edges); i++ {
		if !geom.Near(edges[i].End(), edges[i+1].Start(), eps) {
			return &InvalidLoopError{
				Check: CheckContinuity, Index: i, Other: i + 1,
				Element: edges[i].Element, OtherElement: edges[i+1].Element,
				Reason: fmt.Sprintf("%v does not meet %v", edges[i].End(), edges[i+1].Start()),
			}
		}
	}
	return nil
}

func checkClosure(edges []Edge, eps float64) error {
	last := len(edges) - 1
	if !geom.Near(edges[last].End(), edges[0].Start(), eps) {
		return &InvalidLoopError{
			Check: CheckClosure, Index: last, Other: 0,
			Element: edges[last].Element, OtherElement: edges[0].Element,
			Reason: fmt.Sprintf("loop ends at %v, not at its start %v", edges[last].End(), edges[0].Start()),
		}
	}
	return nil
}

// referenceNormal returns the requested normal, or one derived from the
// loop with Newell's method and oriented so its largest component is
// positive. Self-cancelling loops fall back to the widest vertex triangle.
func referenceNormal(edges []Edge, requested geom.Vec) (geom.Vec, error) {
	if requested != (geom.Vec{}) {
		if !geom.Finite(requested) || requested.Length() < geom.Epsilon {
			return geom.Vec{}, &InvalidLoopError{Check: CheckPlanarity, Index: -1, Other: -1, Element: -1, OtherElement: -1, Reason: "reference normal has zero length"}
		}
		return requested.Normalize(), nil
	}

	var pts []geom.Point
	for _, e := range edges {
		s := e.samples()
		pts = append(pts, s[:len(s)-1]...)
	}

	var n geom.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	bb := geom.Bounds(pts...)
	scale := bb.Max.Sub(bb.Min).Length()
	if n.Length() <= geom.Epsilon*scale*scale {
		n = widestTriangleNormal(pts)
	}
	if n.Length() <= geom.Epsilon*scale*scale {
		return geom.Vec{}, &InvalidLoopError{Check: CheckPlanarity, Index: -1, Other: -1, Element: -1, OtherElement: -1, Reason: "loop vertices are collinear"}
	}
	n = n.Normalize()

	big := n.X
	if math.Abs(n.Y) > math.Abs(big) {
		big = n.Y
	}
	if math.Abs(n.Z) > math.Abs(big) {
		big = n.Z
	}
	if big < 0 {
		n = n.MulScalar(-1)
	}
	return n, nil
}

func widestTriangleNormal(pts []geom.Point) geom.Vec {
	var best geom.Vec
	for i := 1; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			c := pts[i].Sub(pts[0]).Cross(pts[j].Sub(pts[0]))
			if c.Length() > best.Length() {
				best = c
			}
		}
	}
	return best
}

func checkPlanarity(edges []Edge, plane geom.Plane, eps float64) error {
	for i, e := range edges {
		for _, p := range e.samples() {
			if d := plane.SignedDistance(p); math.Abs(d) > eps {
				return &InvalidLoopError{
					Check: CheckPlanarity, Index: i, Other: -1, Element: e.Element, OtherElement: -1,
					Reason: fmt.Sprintf("%v lies %.3g off the loop plane", p, d),
				}
			}
		}
		if e.Kind == EdgeArc && e.Arc.Normal.Cross(plane.Normal()).Length() > 1e-6 {
			return &InvalidLoopError{
				Check: CheckPlanarity, Index: i, Other: -1, Element: e.Element, OtherElement: -1,
				Reason: "arc is not parallel to the loop plane",
			}
		}
	}
	return nil
}

func reverseEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[len(edges)-1-i] = e.Reverse()
	}
	return out
}
