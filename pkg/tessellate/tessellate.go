// Package tessellate flattens sketches and boundary loops into ordered
// straight segments for an external renderer, and builds ribbon meshes
// from those segments.
package tessellate

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/contour/pkg/boundary"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
)

// DefaultSegments is the chord count used for an arc when none is given.
const DefaultSegments = 16

// Segment is one straight piece of a tessellated stream.
type Segment struct {
	A geom.Point `json:"a"`
	B geom.Point `json:"b"`
}

// Options controls tessellation resolution. Zero fields take defaults.
type Options struct {
	// Segments is the chord count for every arc.
	Segments int
	// MaxSegmentLength, when positive, raises the chord count of long arcs
	// and splits long lines so no segment is longer than it.
	MaxSegmentLength float64
}

// DefaultOptions returns DefaultSegments chords per arc and no length cap.
func DefaultOptions() Options {
	return Options{Segments: DefaultSegments}
}

func (o Options) resolve() (Options, error) {
	if o.Segments < 0 {
		return o, &geom.InvalidArgumentError{Op: "tessellate", Arg: "segments", Reason: fmt.Sprintf("%d is negative", o.Segments)}
	}
	if o.MaxSegmentLength < 0 || math.IsNaN(o.MaxSegmentLength) {
		return o, &geom.InvalidArgumentError{Op: "tessellate", Arg: "max segment length", Reason: fmt.Sprintf("%g is negative", o.MaxSegmentLength)}
	}
	if o.Segments == 0 {
		o.Segments = DefaultSegments
	}
	return o, nil
}

// pieces returns how many segments a curve of the given length needs.
func (o Options) pieces(length float64, floor int) int {
	n := floor
	if o.MaxSegmentLength > 0 && !math.IsInf(o.MaxSegmentLength, 1) {
		n = max(n, int(math.Ceil(length/o.MaxSegmentLength)))
	}
	return n
}

// Arc returns the chords approximating a.
func Arc(a geom.Arc, opts Options) ([]Segment, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	return arcSegments(a, opts)
}

// Line returns l as one segment, or several when MaxSegmentLength splits it.
func Line(l geom.Line, opts Options) ([]Segment, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	tp, err := geom.AsTwoPoint(l)
	if err != nil {
		return nil, err
	}
	return lineSegments(tp, opts), nil
}

func arcSegments(a geom.Arc, opts Options) ([]Segment, error) {
	chords, err := geom.ArcToPolyline(a, opts.pieces(a.Length(), opts.Segments))
	if err != nil {
		return nil, err
	}
	return lo.Map(chords, func(c geom.TwoPointLine, _ int) Segment {
		return Segment{A: c.A, B: c.B}
	}), nil
}

func lineSegments(l geom.TwoPointLine, opts Options) []Segment {
	n := opts.pieces(l.Length(), 1)
	if n == 1 {
		return []Segment{{A: l.A, B: l.B}}
	}
	out := make([]Segment, n)
	prev := l.A
	for i := range out {
		next := l.B
		if i < n-1 {
			next = l.PointAt(float64(i+1) / float64(n))
		}
		out[i] = Segment{A: prev, B: next}
		prev = next
	}
	return out
}

// Sketch flattens every line and arc of s in element order. Points
// contribute no segments.
func Sketch(s *sketch.Sketch, opts Options) ([]Segment, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	var out []Segment
	for _, id := range s.Elements() {
		e, _ := s.Element(id)
		switch e := e.(type) {
		case sketch.LineElement:
			out = append(out, lineSegments(e.Line, opts)...)
		case sketch.ArcElement:
			segs, err := arcSegments(e.Arc, opts)
			if err != nil {
				return nil, fmt.Errorf("tessellate: element %d: %w", id, err)
			}
			out = append(out, segs...)
		}
	}
	return out, nil
}

// Loop flattens a validated loop in traversal order, so consecutive
// segments share endpoints and the last ends where the first starts.
func Loop(l *boundary.Loop, opts Options) ([]Segment, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	var out []Segment
	for i, e := range l.Edges {
		if e.Kind == boundary.EdgeLine {
			out = append(out, lineSegments(e.Line, opts)...)
			continue
		}
		segs, err := arcSegments(e.Arc, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: loop edge %d: %w", i, err)
		}
		out = append(out, segs...)
	}
	return out, nil
}

// Length returns the summed length of segs.
func Length(segs []Segment) float64 {
	return lo.SumBy(segs, func(s Segment) float64 { return s.B.Sub(s.A).Length() })
}
