package sketch

import (
	"fmt"
	"strings"
)

// RelationID is a stable index into a sketch's relation arena.
type RelationID int

// NoRelation marks findings that are not tied to a relation.
const NoRelation RelationID = -1

// RelationKind enumerates the geometric constraints a sketch understands.
type RelationKind int

const (
	Horizontal    RelationKind = iota // line parallel to the plane's u axis
	Vertical                          // line parallel to the plane's v axis
	Coincident                        // point on point, line or arc
	Perpendicular                     // two lines at right angles
	Tangent                           // arc touching a line or another arc
	Parallel                          // two lines with parallel directions
	Colinear                          // two lines on the same infinite line
	Coradial                          // two arcs sharing center and radius
	Concentric                        // point or arc sharing an arc's center
	Midpoint                          // point halfway along a line
	Intersection                      // point lying on two curves
	Equal                             // equal line lengths or equal radii
	Fixed                             // element parameters pinned
)

var relationNames = [...]string{
	Horizontal:    "horizontal",
	Vertical:      "vertical",
	Coincident:    "coincident",
	Perpendicular: "perpendicular",
	Tangent:       "tangent",
	Parallel:      "parallel",
	Colinear:      "colinear",
	Coradial:      "coradial",
	Concentric:    "concentric",
	Midpoint:      "midpoint",
	Intersection:  "intersection",
	Equal:         "equal",
	Fixed:         "fixed",
}

func (k RelationKind) String() string {
	if k >= 0 && int(k) < len(relationNames) {
		return relationNames[k]
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

// ParseRelationKind maps a kebab-case name ("perpendicular", "fixed") to its
// kind.
func ParseRelationKind(name string) (RelationKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range relationNames {
		if n == name {
			return RelationKind(k), nil
		}
	}
	return 0, fmt.Errorf("sketch: unknown relation kind %q", name)
}

// Relation is a constraint over the elements it names. The slice is owned by
// the sketch; accessors hand out copies.
type Relation struct {
	Kind     RelationKind
	Elements []ElementID
}

func (r Relation) String() string {
	ids := make([]string, len(r.Elements))
	for i, id := range r.Elements {
		ids[i] = fmt.Sprint(int(id))
	}
	return fmt.Sprintf("%s(%s)", r.Kind, strings.Join(ids, ", "))
}

// signature lists the element kinds accepted at each argument position.
type signature [][]ElementKind

var (
	anyKind   = []ElementKind{KindPoint, KindLine, KindArc}
	lineOnly  = []ElementKind{KindLine}
	arcOnly   = []ElementKind{KindArc}
	pointOnly = []ElementKind{KindPoint}
	curve     = []ElementKind{KindLine, KindArc}
)

// signatures holds the accepted shapes per relation kind. A kind with more
// than one signature accepts any of them.
var signatures = map[RelationKind][]signature{
	Horizontal:    {{lineOnly}},
	Vertical:      {{lineOnly}},
	Coincident:    {{pointOnly, anyKind}},
	Perpendicular: {{lineOnly, lineOnly}},
	Tangent:       {{arcOnly, curve}},
	Parallel:      {{lineOnly, lineOnly}},
	Colinear:      {{lineOnly, lineOnly}},
	Coradial:      {{arcOnly, arcOnly}},
	Concentric:    {{[]ElementKind{KindPoint, KindArc}, arcOnly}},
	Midpoint:      {{pointOnly, lineOnly}},
	Intersection:  {{pointOnly, curve, curve}},
	Equal:         {{lineOnly, lineOnly}, {arcOnly, arcOnly}},
	Fixed:         {{anyKind}},
}

func (sig signature) accepts(kinds []ElementKind) (arg int, ok bool) {
	if len(kinds) != len(sig) {
		return -1, false
	}
	for i, k := range kinds {
		found := false
		for _, want := range sig[i] {
			if k == want {
				found = true
				break
			}
		}
		if !found {
			return i, false
		}
	}
	return -1, true
}

func (sig signature) describe() string {
	parts := make([]string, len(sig))
	for i, ks := range sig {
		names := make([]string, len(ks))
		for j, k := range ks {
			names[j] = k.String()
		}
		parts[i] = strings.Join(names, "|")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
