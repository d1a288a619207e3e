package solver

import (
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
)

// equation is a block of scalar residual rows evaluated over the full
// parameter vector.
type equation struct {
	relation sketch.RelationID
	rows     int
	eval     func(vals, out []float64)
}

// tangency selects which arc-arc tangent configuration an equation targets.
type tangency int

const (
	external tangency = iota // d = r1 + r2
	internal                 // d = |r1 − r2|
)

func (t tangency) String() string {
	if t == internal {
		return "internal"
	}
	return "external"
}

// safeLength keeps normalizations finite for collapsed vectors.
func safeLength(v geom.Vec) float64 {
	return math.Max(v.Length(), geom.Epsilon)
}

func putVec(out []float64, v geom.Vec) {
	out[0], out[1], out[2] = v.X, v.Y, v.Z
}

// onCurve returns the residual rows that put a point on a point, line or
// arc slot. point is the offset of the point's coordinates.
func onCurve(point int, target slot) (int, func(vals, out []float64)) {
	switch target.kind {
	case sketch.KindPoint:
		return 3, func(vals, out []float64) {
			putVec(out, vecAt(vals, point).Sub(vecAt(vals, target.off)))
		}
	case sketch.KindLine:
		return 3, func(vals, out []float64) {
			p := vecAt(vals, point)
			a := vecAt(vals, target.off)
			d := vecAt(vals, target.off+3).Sub(a)
			putVec(out, p.Sub(a).Cross(d).DivScalar(safeLength(d)))
		}
	default:
		n := target.normal
		return 2, func(vals, out []float64) {
			rel := vecAt(vals, point).Sub(vecAt(vals, target.off+arcCenter))
			out[0] = rel.Length() - vals[target.off+arcRadius]
			out[1] = rel.Dot(n)
		}
	}
}

// signedDistance returns the in-plane distance from an arc's center to a
// line, positive when the center lies to the right of the line about the
// arc normal.
func signedDistance(vals []float64, arc, line slot) float64 {
	c := vecAt(vals, arc.off+arcCenter)
	a := vecAt(vals, line.off)
	d := lineDir(vals, line)
	return arc.normal.Dot(c.Sub(a).Cross(d)) / safeLength(d)
}

func lineDir(vals []float64, sl slot) geom.Vec {
	return vecAt(vals, sl.off+3).Sub(vecAt(vals, sl.off))
}

// relationEquation compiles one relation into residual rows. mode is only
// consulted for arc-arc tangency.
func (l *layout) relationEquation(rid sketch.RelationID, r sketch.Relation, mode tangency) (equation, error) {
	slots := make([]slot, len(r.Elements))
	for i, id := range r.Elements {
		if _, ok := l.index[id]; !ok {
			return equation{}, &sketch.InvalidElementReferenceError{Op: r.Kind.String(), Arg: i, Element: id, Reason: "no such element"}
		}
		slots[i] = l.slotOf(id)
	}
	eq := equation{relation: rid}

	switch r.Kind {
	case sketch.Horizontal, sketch.Vertical:
		u, v := l.plane.Basis()
		axis := v
		if r.Kind == sketch.Vertical {
			axis = u
		}
		ln := slots[0]
		eq.rows = 1
		eq.eval = func(vals, out []float64) {
			out[0] = lineDir(vals, ln).Dot(axis)
		}

	case sketch.Coincident:
		eq.rows, eq.eval = onCurve(slots[0].off, slots[1])

	case sketch.Perpendicular:
		l1, l2 := slots[0], slots[1]
		eq.rows = 1
		eq.eval = func(vals, out []float64) {
			d1, d2 := lineDir(vals, l1), lineDir(vals, l2)
			out[0] = d1.Dot(d2) / (safeLength(d1) * safeLength(d2))
		}

	case sketch.Parallel:
		l1, l2 := slots[0], slots[1]
		eq.rows = 3
		eq.eval = func(vals, out []float64) {
			d1, d2 := lineDir(vals, l1), lineDir(vals, l2)
			putVec(out, d1.Cross(d2).DivScalar(safeLength(d1)*safeLength(d2)))
		}

	case sketch.Colinear:
		l1, l2 := slots[0], slots[1]
		_, onLine := onCurve(l2.off, l1)
		eq.rows = 6
		eq.eval = func(vals, out []float64) {
			d1, d2 := lineDir(vals, l1), lineDir(vals, l2)
			putVec(out, d1.Cross(d2).DivScalar(safeLength(d1)*safeLength(d2)))
			onLine(vals, out[3:])
		}

	case sketch.Tangent:
		arc, other := slots[0], slots[1]
		eq.rows = 1
		if other.kind == sketch.KindLine {
			// The line keeps the side of the center it starts on; a line
			// through the center goes to the positive side.
			side := 1.0
			if signedDistance(l.values, arc, other) < 0 {
				side = -1
			}
			eq.eval = func(vals, out []float64) {
				out[0] = signedDistance(vals, arc, other) - side*vals[arc.off+arcRadius]
			}
			break
		}
		eq.eval = func(vals, out []float64) {
			d := vecAt(vals, arc.off+arcCenter).Sub(vecAt(vals, other.off+arcCenter)).Length()
			r1, r2 := vals[arc.off+arcRadius], vals[other.off+arcRadius]
			if mode == internal {
				out[0] = d - math.Abs(r1-r2)
			} else {
				out[0] = d - (r1 + r2)
			}
		}

	case sketch.Coradial:
		a1, a2 := slots[0], slots[1]
		eq.rows = 4
		eq.eval = func(vals, out []float64) {
			putVec(out, vecAt(vals, a1.off+arcCenter).Sub(vecAt(vals, a2.off+arcCenter)))
			out[3] = vals[a1.off+arcRadius] - vals[a2.off+arcRadius]
		}

	case sketch.Concentric:
		first, arc := slots[0], slots[1]
		eq.rows = 3
		eq.eval = func(vals, out []float64) {
			putVec(out, vecAt(vals, first.off).Sub(vecAt(vals, arc.off+arcCenter)))
		}

	case sketch.Midpoint:
		p, ln := slots[0], slots[1]
		eq.rows = 3
		eq.eval = func(vals, out []float64) {
			mid := vecAt(vals, ln.off).Add(vecAt(vals, ln.off+3)).MulScalar(0.5)
			putVec(out, vecAt(vals, p.off).Sub(mid))
		}

	case sketch.Intersection:
		n1, f1 := onCurve(slots[0].off, slots[1])
		n2, f2 := onCurve(slots[0].off, slots[2])
		eq.rows = n1 + n2
		eq.eval = func(vals, out []float64) {
			f1(vals, out[:n1])
			f2(vals, out[n1:])
		}

	case sketch.Equal:
		e1, e2 := slots[0], slots[1]
		eq.rows = 1
		if e1.kind == sketch.KindArc {
			eq.eval = func(vals, out []float64) {
				out[0] = vals[e1.off+arcRadius] - vals[e2.off+arcRadius]
			}
			break
		}
		eq.eval = func(vals, out []float64) {
			out[0] = lineDir(vals, e1).Length() - lineDir(vals, e2).Length()
		}

	case sketch.Fixed:
		// Pins parameters; contributes no rows.

	default:
		return equation{}, fmt.Errorf("solver: relation %d: unsupported kind %s", rid, r.Kind)
	}
	return eq, nil
}

// tangencyOf picks the arc-arc tangent configuration closest to being
// satisfied at vals.
func (l *layout) tangencyOf(r sketch.Relation, vals []float64) tangency {
	a1, a2 := l.slotOf(r.Elements[0]), l.slotOf(r.Elements[1])
	d := vecAt(vals, a1.off+arcCenter).Sub(vecAt(vals, a2.off+arcCenter)).Length()
	r1, r2 := vals[a1.off+arcRadius], vals[a2.off+arcRadius]
	if math.Abs(d-math.Abs(r1-r2)) < math.Abs(d-(r1+r2)) {
		return internal
	}
	return external
}
