package cmd

import (
	"encoding/json"
	"io"

	"github.com/chazu/contour/pkg/boundary"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
	"github.com/chazu/contour/pkg/solver"
	"github.com/chazu/contour/pkg/tessellate"
)

type vec3 [3]float64

func toVec3(v geom.Vec) vec3 { return vec3{v.X, v.Y, v.Z} }

type elementView struct {
	ID        int     `json:"id"`
	Kind      string  `json:"kind"`
	At        *vec3   `json:"at,omitempty"`
	A         *vec3   `json:"a,omitempty"`
	B         *vec3   `json:"b,omitempty"`
	Center    *vec3   `json:"center,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Start     *vec3   `json:"start,omitempty"`
	End       *vec3   `json:"end,omitempty"`
	Direction string  `json:"direction,omitempty"`
}

func ptr(v geom.Vec) *vec3 {
	p := toVec3(v)
	return &p
}

func viewElement(id sketch.ElementID, e sketch.Element) elementView {
	ev := elementView{ID: int(id), Kind: e.Kind().String()}
	switch e := e.(type) {
	case sketch.PointElement:
		ev.At = ptr(e.At)
	case sketch.LineElement:
		ev.A, ev.B = ptr(e.Line.A), ptr(e.Line.B)
	case sketch.ArcElement:
		ev.Center, ev.Start, ev.End = ptr(e.Arc.Center), ptr(e.Arc.Start), ptr(e.Arc.End)
		ev.Radius = e.Arc.Radius
		ev.Direction = e.Arc.Direction.String()
	}
	return ev
}

type solveView struct {
	Sketch     string        `json:"sketch"`
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	DOF        int           `json:"dof"`
	Params     int           `json:"params"`
	Rank       int           `json:"rank"`
	Iterations int           `json:"iterations"`
	Residual   float64       `json:"residual"`
	Changed    []int         `json:"changed"`
	Elements   []elementView `json:"elements"`
}

func viewSolve(s *sketch.Sketch, res solver.Result) solveView {
	sv := solveView{
		Sketch:     s.ID.String(),
		Name:       s.Name,
		Status:     res.Status.String(),
		DOF:        res.DOF,
		Params:     res.Params,
		Rank:       res.Rank,
		Iterations: res.Iterations,
		Residual:   res.Residual,
		Changed:    make([]int, len(res.Changed)),
	}
	for i, id := range res.Changed {
		sv.Changed[i] = int(id)
	}
	for _, id := range s.Elements() {
		e, _ := s.Element(id)
		sv.Elements = append(sv.Elements, viewElement(id, e))
	}
	return sv
}

type segmentView struct {
	A vec3 `json:"a"`
	B vec3 `json:"b"`
}

func viewSegments(segs []tessellate.Segment) []segmentView {
	out := make([]segmentView, len(segs))
	for i, s := range segs {
		out[i] = segmentView{A: toVec3(s.A), B: toVec3(s.B)}
	}
	return out
}

type loopView struct {
	Winding  string        `json:"winding"`
	Normal   vec3          `json:"normal"`
	Area     float64       `json:"area"`
	Reversed bool          `json:"reversed"`
	Vertices []vec3        `json:"vertices"`
	Segments []segmentView `json:"segments"`
}

func viewLoop(l *boundary.Loop, segs []tessellate.Segment) loopView {
	lv := loopView{
		Winding:  l.Winding.String(),
		Normal:   toVec3(l.Normal),
		Area:     l.Area,
		Reversed: l.Reversed,
		Segments: viewSegments(segs),
	}
	for _, v := range l.Vertices() {
		lv.Vertices = append(lv.Vertices, toVec3(v))
	}
	return lv
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
