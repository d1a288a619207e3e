package boundary

import (
	"fmt"

	"github.com/chazu/contour/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// Element is one entry of a loop: LineEdge, ArcEdge or Polygon.
type Element interface {
	boundaryElement()
}

// LineEdge is a straight edge from Line.A to Line.B.
type LineEdge struct {
	Line geom.TwoPointLine
}

// ArcEdge is a circular edge from Arc.Start to Arc.End.
type ArcEdge struct {
	Arc geom.Arc
}

// Polygon is a composite edge: its elements are traversed in order and may
// themselves be polygons.
type Polygon struct {
	Elements []Element
}

func (LineEdge) boundaryElement() {}
func (ArcEdge) boundaryElement()  {}
func (Polygon) boundaryElement()  {}

// NewPolygon returns the open chain of straight edges v0→v1→…→vn-1.
func NewPolygon(vertices ...geom.Point) (Polygon, error) {
	if len(vertices) < 2 {
		return Polygon{}, &geom.InvalidArgumentError{Op: "polygon", Arg: "vertex count", Reason: fmt.Sprintf("%d is less than 2", len(vertices))}
	}
	p := Polygon{Elements: make([]Element, 0, len(vertices)-1)}
	for i := 0; i+1 < len(vertices); i++ {
		l, err := geom.NewTwoPointLine(vertices[i], vertices[i+1])
		if err != nil {
			return Polygon{}, fmt.Errorf("boundary: polygon edge %d: %w", i, err)
		}
		p.Elements = append(p.Elements, LineEdge{Line: l})
	}
	return p, nil
}

// ClosedPolygon is NewPolygon with an extra edge from the last vertex back
// to the first.
func ClosedPolygon(vertices ...geom.Point) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, &geom.InvalidArgumentError{Op: "closed polygon", Arg: "vertex count", Reason: fmt.Sprintf("%d is less than 3", len(vertices))}
	}
	return NewPolygon(append(append([]geom.Point(nil), vertices...), vertices[0])...)
}

// EdgeKind tells which field of an Edge is populated.
type EdgeKind int

const (
	EdgeLine EdgeKind = iota
	EdgeArc
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeLine:
		return "line"
	case EdgeArc:
		return "arc"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Edge is a primitive edge after flattening. Element is the index of the
// top-level loop element it came from.
type Edge struct {
	Kind    EdgeKind
	Line    geom.TwoPointLine
	Arc     geom.Arc
	Element int
}

// Start returns the point the edge leaves from.
func (e Edge) Start() geom.Point {
	if e.Kind == EdgeArc {
		return e.Arc.Start
	}
	return e.Line.A
}

// End returns the point the edge arrives at.
func (e Edge) End() geom.Point {
	if e.Kind == EdgeArc {
		return e.Arc.End
	}
	return e.Line.B
}

// Reverse returns the edge traversed the other way.
func (e Edge) Reverse() Edge {
	r := e
	if e.Kind == EdgeArc {
		r.Arc = e.Arc.Reverse()
	} else {
		r.Line = e.Line.Reverse()
	}
	return r
}

// Bounds returns the edge's axis-aligned bounding box.
func (e Edge) Bounds() sdf.Box3 {
	if e.Kind == EdgeArc {
		return e.Arc.Bounds()
	}
	return e.Line.Bounds()
}

// samples returns points whose coplanarity implies the edge's.
func (e Edge) samples() []geom.Point {
	if e.Kind == EdgeArc {
		return []geom.Point{e.Arc.Start, e.Arc.PointAt(0.5), e.Arc.End}
	}
	return []geom.Point{e.Line.A, e.Line.B}
}
