package solver

import (
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
)

// Parameter block sizes per element kind.
const (
	pointParams = 3  // x y z
	lineParams  = 6  // a, b
	arcParams   = 6  // center, radius, start angle, end angle
)

// Offsets inside an arc block. Angles are measured in the slot's (u, v)
// basis, so endpoints stay on the circle by construction.
const (
	arcCenter = 0
	arcRadius = 3
	arcStart  = 4
	arcEnd    = 5
)

// slot places one live element in the flat parameter vector.
type slot struct {
	id     sketch.ElementID
	kind   sketch.ElementKind
	off    int
	size   int
	normal geom.Vec          // arcs only
	u, v   geom.Vec          // arcs only: in-plane basis for the angles
	dir    geom.ArcDirection // arcs only
}

// layout is the flat parameter vector for every live element of a sketch.
type layout struct {
	plane  geom.Plane
	slots  []slot
	index  map[sketch.ElementID]int // element -> slot
	values []float64
}

func newLayout(s *sketch.Sketch) (*layout, error) {
	l := &layout{plane: s.Plane(), index: make(map[sketch.ElementID]int)}
	for _, id := range s.Elements() {
		e, _ := s.Element(id)
		sl := slot{id: id, kind: e.Kind(), off: len(l.values)}
		switch e := e.(type) {
		case sketch.PointElement:
			sl.size = pointParams
			l.values = appendVec(l.values, e.At)
		case sketch.LineElement:
			sl.size = lineParams
			l.values = appendVec(l.values, e.Line.A)
			l.values = appendVec(l.values, e.Line.B)
		case sketch.ArcElement:
			sl.size = arcParams
			plane, err := geom.NewPlane(e.Arc.Normal, e.Arc.Center)
			if err != nil {
				return nil, fmt.Errorf("solver: element %d: %w", id, err)
			}
			sl.normal = plane.Normal()
			sl.u, sl.v = plane.Basis()
			sl.dir = e.Arc.Direction
			l.values = appendVec(l.values, e.Arc.Center)
			l.values = append(l.values, e.Arc.Radius,
				sl.angleOf(e.Arc.Start.Sub(e.Arc.Center)),
				sl.angleOf(e.Arc.End.Sub(e.Arc.Center)))
		default:
			return nil, fmt.Errorf("solver: element %d has unsupported type %T", id, e)
		}
		l.index[id] = len(l.slots)
		l.slots = append(l.slots, sl)
	}
	return l, nil
}

func (l *layout) slotOf(id sketch.ElementID) slot { return l.slots[l.index[id]] }

// element rebuilds the element stored in sl from a full value vector.
func (l *layout) element(sl slot, vals []float64) (sketch.Element, error) {
	switch sl.kind {
	case sketch.KindPoint:
		return sketch.PointElement{At: vecAt(vals, sl.off)}, nil
	case sketch.KindLine:
		return sketch.LineElement{Line: geom.TwoPointLine{A: vecAt(vals, sl.off), B: vecAt(vals, sl.off+3)}}, nil
	case sketch.KindArc:
		c := vecAt(vals, sl.off+arcCenter)
		r := vals[sl.off+arcRadius]
		a := geom.Arc{
			Center:    c,
			Radius:    r,
			Start:     c.Add(sl.radial(vals[sl.off+arcStart]).MulScalar(r)),
			End:       c.Add(sl.radial(vals[sl.off+arcEnd]).MulScalar(r)),
			Direction: sl.dir,
			Normal:    sl.normal,
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		return sketch.ArcElement{Arc: a}, nil
	default:
		return nil, fmt.Errorf("solver: element %d has unsupported kind %s", sl.id, sl.kind)
	}
}

// angleOf returns the polar angle of an in-plane offset in the slot basis.
func (sl slot) angleOf(rel geom.Vec) float64 {
	return math.Atan2(rel.Dot(sl.v), rel.Dot(sl.u))
}

// radial returns the unit in-plane direction at angle theta.
func (sl slot) radial(theta float64) geom.Vec {
	return sl.u.MulScalar(math.Cos(theta)).Add(sl.v.MulScalar(math.Sin(theta)))
}

func appendVec(dst []float64, v geom.Vec) []float64 {
	return append(dst, v.X, v.Y, v.Z)
}

func vecAt(vals []float64, off int) geom.Vec {
	return geom.Vec{X: vals[off], Y: vals[off+1], Z: vals[off+2]}
}
