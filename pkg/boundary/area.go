package boundary

import (
	"github.com/chazu/contour/pkg/geom"
)

// signedArea returns the loop's area in the plane's (u, v) coordinates,
// positive for counter-clockwise travel about the plane normal. Line edges
// contribute ½(s × e); arc edges contribute ½[r²φ + c × (e − s)] with φ the
// sweep signed about the plane normal.
func signedArea(edges []Edge, plane geom.Plane) float64 {
	var twice float64
	for _, e := range edges {
		s := plane.ToLocal(e.Start())
		t := plane.ToLocal(e.End())
		if e.Kind != EdgeArc {
			twice += cross2(s, t)
			continue
		}
		phi := e.Arc.SignedSweep()
		if e.Arc.Normal.Dot(plane.Normal()) < 0 {
			phi = -phi
		}
		c := plane.ToLocal(e.Arc.Center)
		twice += e.Arc.Radius*e.Arc.Radius*phi + cross2(c, t.Sub(s))
	}
	return twice / 2
}
