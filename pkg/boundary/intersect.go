package boundary

import (
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/dhconnelly/rtreego"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// flatEdge is an edge expressed in the loop plane's (u, v) coordinates.
// Arcs carry their start angle and a sweep signed about the loop normal.
type flatEdge struct {
	index    int
	arc      bool
	a, b     v2.Vec
	c        v2.Vec
	r        float64
	start    float64
	sweep    float64
	min, max v2.Vec
}

func cross2(a, b v2.Vec) float64 { return a.X*b.Y - a.Y*b.X }

// boxPad keeps every R-tree rectangle strictly positive in size.
const boxPad = 1e-9

// Bounds implements rtreego.Spatial.
func (f *flatEdge) Bounds() rtreego.Rect {
	r, _ := rtreego.NewRect(
		rtreego.Point{f.min.X, f.min.Y},
		[]float64{math.Max(f.max.X-f.min.X, 0) + boxPad, math.Max(f.max.Y-f.min.Y, 0) + boxPad},
	)
	return r
}

func flattenEdge(i int, e Edge, plane geom.Plane, eps float64) *flatEdge {
	f := &flatEdge{index: i, a: plane.ToLocal(e.Start()), b: plane.ToLocal(e.End())}
	if e.Kind == EdgeArc {
		f.arc = true
		f.c = plane.ToLocal(e.Arc.Center)
		f.r = e.Arc.Radius
		f.start = math.Atan2(f.a.Y-f.c.Y, f.a.X-f.c.X)
		f.sweep = e.Arc.SignedSweep()
		if e.Arc.Normal.Dot(plane.Normal()) < 0 {
			f.sweep = -f.sweep
		}
	}
	f.min = v2.Vec{X: math.Min(f.a.X, f.b.X), Y: math.Min(f.a.Y, f.b.Y)}
	f.max = v2.Vec{X: math.Max(f.a.X, f.b.X), Y: math.Max(f.a.Y, f.b.Y)}
	if f.arc {
		for k := 0; k < 4; k++ {
			ang := float64(k) * math.Pi / 2
			if f.contains(ang, 0) {
				p := v2.Vec{X: f.c.X + f.r*math.Cos(ang), Y: f.c.Y + f.r*math.Sin(ang)}
				f.min = v2.Vec{X: math.Min(f.min.X, p.X), Y: math.Min(f.min.Y, p.Y)}
				f.max = v2.Vec{X: math.Max(f.max.X, p.X), Y: math.Max(f.max.Y, p.Y)}
			}
		}
	}
	f.min = v2.Vec{X: f.min.X - eps, Y: f.min.Y - eps}
	f.max = v2.Vec{X: f.max.X + eps, Y: f.max.Y + eps}
	return f
}

// contains reports whether the direction at angle ang lies within the arc's
// sweep, widened by tol radians at both ends.
func (f *flatEdge) contains(ang, tol float64) bool {
	d := ang - f.start
	if f.sweep < 0 {
		d = -d
	}
	d = math.Mod(d, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	sweep := math.Abs(f.sweep)
	return d <= sweep+tol || d >= 2*math.Pi-tol
}

// onArc reports whether p, known to lie on the arc's circle, is within the
// swept part.
func (f *flatEdge) onArc(p v2.Vec, eps float64) bool {
	return f.contains(math.Atan2(p.Y-f.c.Y, p.X-f.c.X), eps/f.r)
}

// distanceTo returns the distance from p to the edge.
func (f *flatEdge) distanceTo(p v2.Vec) float64 {
	if !f.arc {
		return pointSegmentDistance(p, f.a, f.b)
	}
	rel := p.Sub(f.c)
	if f.onArc(p, 0) {
		return math.Abs(rel.Length() - f.r)
	}
	return math.Min(p.Sub(f.a).Length(), p.Sub(f.b).Length())
}

func pointSegmentDistance(p, a, b v2.Vec) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
	return p.Sub(a.Add(d.MulScalar(t))).Length()
}

// intersects reports whether two edges come within eps of each other.
func intersects(f, g *flatEdge, eps float64) bool {
	for _, p := range []v2.Vec{f.a, f.b} {
		if g.distanceTo(p) <= eps {
			return true
		}
	}
	for _, p := range []v2.Vec{g.a, g.b} {
		if f.distanceTo(p) <= eps {
			return true
		}
	}
	switch {
	case !f.arc && !g.arc:
		return segmentsCross(f.a, f.b, g.a, g.b)
	case f.arc && g.arc:
		return arcsCross(f, g, eps)
	case f.arc:
		return segmentArcCross(g, f, eps)
	default:
		return segmentArcCross(f, g, eps)
	}
}

// segmentsCross reports a proper crossing; touching cases are caught by the
// endpoint distance tests.
func segmentsCross(a, b, c, d v2.Vec) bool {
	d1 := cross2(b.Sub(a), c.Sub(a))
	d2 := cross2(b.Sub(a), d.Sub(a))
	d3 := cross2(d.Sub(c), a.Sub(c))
	d4 := cross2(d.Sub(c), b.Sub(c))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func segmentArcCross(seg, arc *flatEdge, eps float64) bool {
	d := seg.b.Sub(seg.a)
	l := d.Length()
	u := d.MulScalar(1 / l)
	t0 := arc.c.Sub(seg.a).Dot(u)
	foot := seg.a.Add(u.MulScalar(t0))
	h := foot.Sub(arc.c).Length()
	if h > arc.r+eps {
		return false
	}
	half := math.Sqrt(math.Max(0, arc.r*arc.r-h*h))
	for _, t := range []float64{t0 - half, t0 + half} {
		if t < -eps || t > l+eps {
			continue
		}
		if arc.onArc(seg.a.Add(u.MulScalar(t)), eps) {
			return true
		}
	}
	return false
}

func arcsCross(f, g *flatEdge, eps float64) bool {
	delta := g.c.Sub(f.c)
	dist := delta.Length()
	if dist <= eps && math.Abs(f.r-g.r) <= eps {
		// Same circle: the endpoint tests already cover every overlap.
		return false
	}
	if dist > f.r+g.r+eps || dist < math.Abs(f.r-g.r)-eps || dist <= eps {
		return false
	}
	a := (dist*dist + f.r*f.r - g.r*g.r) / (2 * dist)
	h := math.Sqrt(math.Max(0, f.r*f.r-a*a))
	u := delta.MulScalar(1 / dist)
	perp := v2.Vec{X: -u.Y, Y: u.X}
	base := f.c.Add(u.MulScalar(a))
	for _, p := range []v2.Vec{base.Add(perp.MulScalar(h)), base.Sub(perp.MulScalar(h))} {
		if f.onArc(p, eps) && g.onArc(p, eps) {
			return true
		}
	}
	return false
}

// checkSimplicity prunes edge pairs with an R-tree over padded 2D boxes and
// runs exact tests on the survivors. Adjacent edges (including the closing
// pair) share a vertex by construction and are skipped.
func checkSimplicity(edges []Edge, plane geom.Plane, eps float64) error {
	n := len(edges)
	if n < 4 {
		return nil
	}
	flat := make([]*flatEdge, n)
	tree := rtreego.NewTree(2, 25, 50)
	for i, e := range edges {
		flat[i] = flattenEdge(i, e, plane, eps)
		tree.Insert(flat[i])
	}
	adjacent := func(i, j int) bool {
		return j == i+1 || j == i-1 || (i == 0 && j == n-1) || (j == 0 && i == n-1)
	}
	for i, f := range flat {
		for _, hit := range tree.SearchIntersect(f.Bounds()) {
			g := hit.(*flatEdge)
			j := g.index
			if j <= i || adjacent(i, j) {
				continue
			}
			if intersects(f, g, eps) {
				return &InvalidLoopError{
					Check: CheckSimplicity, Index: i, Other: j,
					Element: edges[i].Element, OtherElement: edges[j].Element,
					Reason: fmt.Sprintf("%s edge %d touches %s edge %d", edges[i].Kind, i, edges[j].Kind, j),
				}
			}
		}
	}
	return nil
}
