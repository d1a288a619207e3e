package sketch

import (
	"fmt"

	"github.com/chazu/contour/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// ElementID is a stable index into a sketch's element arena. IDs are never
// reused, so a removed element's ID stays invalid for the sketch's lifetime.
type ElementID int

// NoElement marks findings and errors that are not tied to an element.
const NoElement ElementID = -1

// ElementKind identifies the variant stored in an Element.
type ElementKind int

const (
	KindPoint ElementKind = iota
	KindLine
	KindArc
)

func (k ElementKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Element is the tagged union of sketch geometry. Only PointElement,
// LineElement and ArcElement implement it.
type Element interface {
	Kind() ElementKind
	Bounds() sdf.Box3
	element()
}

// PointElement is a free point.
type PointElement struct {
	At geom.Point
}

func (PointElement) Kind() ElementKind { return KindPoint }
func (PointElement) element()          {}

func (e PointElement) Bounds() sdf.Box3 { return geom.Bounds(e.At) }

// LineElement is a segment. Sketch lines are always stored in two-point form
// so the solver can move their endpoints.
type LineElement struct {
	Line geom.TwoPointLine
}

func (LineElement) Kind() ElementKind { return KindLine }
func (LineElement) element()          {}

func (e LineElement) Bounds() sdf.Box3 { return e.Line.Bounds() }

// ArcElement is a circular arc whose normal is the sketch plane normal.
type ArcElement struct {
	Arc geom.Arc
}

func (ArcElement) Kind() ElementKind { return KindArc }
func (ArcElement) element()          {}

func (e ArcElement) Bounds() sdf.Box3 { return e.Arc.Bounds() }
