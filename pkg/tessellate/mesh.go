package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/geom"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // sketch or loop the mesh came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

func (m *Mesh) appendVertex(p, n geom.Vec) uint32 {
	idx := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	return idx
}

// Ribbon turns each segment into a flat quad of the given width lying in
// plane, two triangles per segment. Segments are projected onto plane
// first. Zero-length segments are skipped.
func Ribbon(segs []Segment, plane geom.Plane, width float64) (*Mesh, error) {
	if !(width > 0) || math.IsInf(width, 1) {
		return nil, &geom.InvalidArgumentError{Op: "ribbon", Arg: "width", Reason: fmt.Sprintf("%g is not a positive finite number", width)}
	}
	if plane.IsZero() {
		plane = geom.XY
	}
	n := plane.Normal()
	m := &Mesh{}
	for i, s := range segs {
		if geom.Near(s.A, s.B, geom.Epsilon) {
			continue
		}
		quad, err := geom.GenerateOffsetQuad(geom.TwoPointLine{A: s.A, B: s.B}, plane, width)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ribbon segment %d: %w", i, err)
		}
		// quad repeats a0 and b1; share them.
		a0 := m.appendVertex(quad[0], n)
		b0 := m.appendVertex(quad[1], n)
		b1 := m.appendVertex(quad[2], n)
		a1 := m.appendVertex(quad[5], n)
		m.Indices = append(m.Indices, a0, b0, b1, a0, b1, a1)
	}
	return m, nil
}
