package solver

import (
	"math"
	"testing"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
)

func TestRelationResidualsVanishWhenSatisfied(t *testing.T) {
	s := sketch.New("", geom.XY)
	l1, _ := s.AddLine(geom.TwoPointLine{A: geom.Vec{}, B: geom.Vec{X: 2}})
	l2, _ := s.AddLine(geom.TwoPointLine{A: geom.Vec{X: 1, Y: -1}, B: geom.Vec{X: 1, Y: 1}})
	p, _ := s.AddPoint(geom.Vec{X: 1})
	a, _ := s.AddArc(geom.Vec{X: 2, Y: 2}, geom.Vec{X: 3, Y: 2}, geom.Vec{X: 2, Y: 3}, geom.CounterClockwise)

	lay, err := newLayout(s)
	if err != nil {
		t.Fatal(err)
	}
	rels := []sketch.Relation{
		{Kind: sketch.Horizontal, Elements: []sketch.ElementID{l1}},
		{Kind: sketch.Vertical, Elements: []sketch.ElementID{l2}},
		{Kind: sketch.Perpendicular, Elements: []sketch.ElementID{l1, l2}},
		{Kind: sketch.Midpoint, Elements: []sketch.ElementID{p, l1}},
		{Kind: sketch.Intersection, Elements: []sketch.ElementID{p, l1, l2}},
		{Kind: sketch.Tangent, Elements: []sketch.ElementID{a, l2}},
		{Kind: sketch.Equal, Elements: []sketch.ElementID{l1, l2}},
	}
	for i, r := range rels {
		t.Run(r.String(), func(t *testing.T) {
			eq, err := lay.relationEquation(sketch.RelationID(i), r, external)
			if err != nil {
				t.Fatal(err)
			}
			out := make([]float64, eq.rows)
			eq.eval(lay.values, out)
			for k, x := range out {
				if math.Abs(x) > 1e-12 {
					t.Errorf("row %d = %v, want 0", k, x)
				}
			}
		})
	}
}

func TestLayoutRebuildsArcFromAngles(t *testing.T) {
	tests := []struct {
		name  string
		plane geom.Plane
		c     geom.Point
		s, e  geom.Point
	}{
		{"xy", geom.XY, geom.Vec{X: 1, Y: 1}, geom.Vec{X: 3, Y: 1}, geom.Vec{X: 1, Y: 3}},
		{"xz", geom.XZ, geom.Vec{}, geom.Vec{X: -1}, geom.Vec{Z: 1}},
		{"yz", geom.YZ, geom.Vec{Y: 2}, geom.Vec{Y: 2, Z: 1}, geom.Vec{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sketch.New("", tt.plane)
			id, err := s.AddArc(tt.c, tt.s, tt.e, geom.CounterClockwise)
			if err != nil {
				t.Fatal(err)
			}
			lay, err := newLayout(s)
			if err != nil {
				t.Fatal(err)
			}
			sl := lay.slotOf(id)
			if sl.size != arcParams {
				t.Errorf("slot size = %d, want %d", sl.size, arcParams)
			}
			got, err := lay.element(sl, lay.values)
			if err != nil {
				t.Fatal(err)
			}
			want, _ := s.Element(id)
			ga, wa := got.(sketch.ArcElement).Arc, want.(sketch.ArcElement).Arc
			if !geom.Near(ga.Start, wa.Start, 1e-12) || !geom.Near(ga.End, wa.End, 1e-12) {
				t.Errorf("endpoints %v %v, want %v %v", ga.Start, ga.End, wa.Start, wa.End)
			}
			if ga.Direction != wa.Direction || ga.Normal != wa.Normal {
				t.Errorf("direction/normal changed: %v %v", ga.Direction, ga.Normal)
			}
		})
	}
}

func TestTangencyOfPicksNearest(t *testing.T) {
	s := sketch.New("", geom.XY)
	a1, _ := s.AddArc(geom.Vec{}, geom.Vec{X: 5}, geom.Vec{Y: 5}, geom.CounterClockwise)
	a2, _ := s.AddArc(geom.Vec{X: 2.5}, geom.Vec{X: 4.5}, geom.Vec{X: 2.5, Y: 2}, geom.CounterClockwise)
	lay, err := newLayout(s)
	if err != nil {
		t.Fatal(err)
	}
	r := sketch.Relation{Kind: sketch.Tangent, Elements: []sketch.ElementID{a2, a1}}
	if got := lay.tangencyOf(r, lay.values); got != internal {
		t.Errorf("tangencyOf() = %v, want internal", got)
	}
}

func TestRankOfCoincidentPoints(t *testing.T) {
	s := sketch.New("", geom.XY)
	p1, _ := s.AddPoint(geom.Vec{})
	p2, _ := s.AddPoint(geom.Vec{X: 1})
	if _, err := s.AddRelation(sketch.Coincident, p1, p2); err != nil {
		t.Fatal(err)
	}
	sys, err := Compile(s, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	lay, _ := newLayout(s)
	p, err := sys.build(lay, []int{0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.rank(p.initial()); got != 3 {
		t.Errorf("rank = %d, want 3", got)
	}
}
