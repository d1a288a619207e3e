package sketch

import (
	"fmt"
	"slices"

	"github.com/chazu/contour/pkg/geom"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Sketch owns a plane, an element arena and a relation arena. Removed slots
// stay in the arenas as tombstones so IDs remain stable.
type Sketch struct {
	ID   uuid.UUID
	Name string

	plane     geom.Plane
	elements  []Element   // nil marks a removed element
	relations []*Relation // nil marks a removed relation
	revision  uint64
}

// New returns an empty sketch on plane. A zero plane means XY.
func New(name string, plane geom.Plane) *Sketch {
	if plane.IsZero() {
		plane = geom.XY
	}
	return &Sketch{
		ID:    uuid.New(),
		Name:  name,
		plane: plane,
	}
}

// Plane returns the sketch plane.
func (s *Sketch) Plane() geom.Plane { return s.plane }

// Revision increases on every structural edit.
func (s *Sketch) Revision() uint64 { return s.revision }

func (s *Sketch) addElement(e Element) ElementID {
	s.elements = append(s.elements, e)
	s.revision++
	return ElementID(len(s.elements) - 1)
}

// AddPoint adds a free point.
func (s *Sketch) AddPoint(p geom.Point) (ElementID, error) {
	if !geom.Finite(p) {
		return NoElement, fmt.Errorf("sketch: add point: %w", &geom.DegenerateInputError{Op: "point", Reason: "non-finite coordinates"})
	}
	return s.addElement(PointElement{At: p}), nil
}

// AddLine adds a line, converting it to two-point form. Conversion failures
// are returned unchanged in type.
func (s *Sketch) AddLine(l geom.Line) (ElementID, error) {
	tp, err := geom.AsTwoPoint(l)
	if err != nil {
		return NoElement, fmt.Errorf("sketch: add line: %w", err)
	}
	return s.addElement(LineElement{Line: tp}), nil
}

// AddArc adds an arc lying in the sketch plane (or a plane parallel to it).
func (s *Sketch) AddArc(center, start, end geom.Point, dir geom.ArcDirection) (ElementID, error) {
	a, err := geom.NewArcOnPlane(s.plane, center, start, end, dir)
	if err != nil {
		return NoElement, fmt.Errorf("sketch: add arc: %w", err)
	}
	return s.addElement(ArcElement{Arc: a}), nil
}

// Element returns the element with the given ID, or false if the ID is out
// of range or removed.
func (s *Sketch) Element(id ElementID) (Element, bool) {
	if id < 0 || int(id) >= len(s.elements) || s.elements[id] == nil {
		return nil, false
	}
	return s.elements[id], true
}

// SetElement overwrites an element's parameters. The replacement must have
// the same kind. It is not a structural edit and does not bump the revision.
func (s *Sketch) SetElement(id ElementID, e Element) error {
	old, ok := s.Element(id)
	if !ok {
		return &InvalidElementReferenceError{Op: "set element", Arg: -1, Element: id, Reason: "no such element"}
	}
	if e == nil || e.Kind() != old.Kind() {
		return &InvalidElementReferenceError{Op: "set element", Arg: -1, Element: id, Reason: fmt.Sprintf("replacement must be a %s", old.Kind())}
	}
	s.elements[id] = e
	return nil
}

// RemoveElement removes an element and every relation that refers to it.
// It returns the IDs of the relations removed by the cascade.
func (s *Sketch) RemoveElement(id ElementID) ([]RelationID, error) {
	if _, ok := s.Element(id); !ok {
		return nil, &InvalidElementReferenceError{Op: "remove element", Arg: -1, Element: id, Reason: "no such element"}
	}
	var removed []RelationID
	for rid, r := range s.relations {
		if r != nil && slices.Contains(r.Elements, id) {
			s.relations[rid] = nil
			removed = append(removed, RelationID(rid))
		}
	}
	s.elements[id] = nil
	s.revision++
	return removed, nil
}

// Elements returns the live element IDs in insertion order.
func (s *Sketch) Elements() []ElementID {
	return lo.FilterMap(s.elements, func(e Element, i int) (ElementID, bool) {
		return ElementID(i), e != nil
	})
}

// ElementCount returns the number of live elements.
func (s *Sketch) ElementCount() int {
	return lo.CountBy(s.elements, func(e Element) bool { return e != nil })
}

// AddRelation validates the referenced elements against the relation's
// signature and appends it. Invalid references fail here, never at solve
// time.
func (s *Sketch) AddRelation(kind RelationKind, ids ...ElementID) (RelationID, error) {
	sigs, ok := signatures[kind]
	if !ok {
		return NoRelation, fmt.Errorf("sketch: unknown relation kind %d", int(kind))
	}
	kinds := make([]ElementKind, len(ids))
	for i, id := range ids {
		e, ok := s.Element(id)
		if !ok {
			reason := "out of range"
			if id >= 0 && int(id) < len(s.elements) {
				reason = "element was removed"
			}
			return NoRelation, &InvalidElementReferenceError{Op: kind.String(), Arg: i, Element: id, Reason: reason}
		}
		if j := slices.Index(ids, id); j != i {
			return NoRelation, &InvalidElementReferenceError{Op: kind.String(), Arg: i, Element: id, Reason: fmt.Sprintf("already used as argument %d", j)}
		}
		kinds[i] = e.Kind()
	}

	var (
		bad     = -1
		matched bool
	)
	for _, sig := range sigs {
		arg, ok := sig.accepts(kinds)
		if ok {
			matched = true
			break
		}
		if arg > bad {
			bad = arg
		}
	}
	if !matched {
		want := lo.Map(sigs, func(sig signature, _ int) string { return sig.describe() })
		err := &InvalidElementReferenceError{Op: kind.String(), Arg: bad, Element: NoElement, Reason: fmt.Sprintf("want %v", want)}
		if bad >= 0 {
			err.Element = ids[bad]
			err.Reason = fmt.Sprintf("%s not accepted; want %v", kinds[bad], want)
		} else {
			err.Reason = fmt.Sprintf("got %d elements; want %v", len(ids), want)
		}
		return NoRelation, err
	}

	s.relations = append(s.relations, &Relation{Kind: kind, Elements: slices.Clone(ids)})
	s.revision++
	return RelationID(len(s.relations) - 1), nil
}

// Relation returns a copy of the relation with the given ID.
func (s *Sketch) Relation(id RelationID) (Relation, bool) {
	if id < 0 || int(id) >= len(s.relations) || s.relations[id] == nil {
		return Relation{}, false
	}
	r := s.relations[id]
	return Relation{Kind: r.Kind, Elements: slices.Clone(r.Elements)}, true
}

// RemoveRelation removes a relation.
func (s *Sketch) RemoveRelation(id RelationID) error {
	if _, ok := s.Relation(id); !ok {
		return &UnknownRelationError{Relation: id}
	}
	s.relations[id] = nil
	s.revision++
	return nil
}

// Relations returns the live relation IDs in insertion order.
func (s *Sketch) Relations() []RelationID {
	return lo.FilterMap(s.relations, func(r *Relation, i int) (RelationID, bool) {
		return RelationID(i), r != nil
	})
}

// RelationsOf returns the live relations that refer to element id.
func (s *Sketch) RelationsOf(id ElementID) []RelationID {
	return lo.Filter(s.Relations(), func(rid RelationID, _ int) bool {
		return slices.Contains(s.relations[rid].Elements, id)
	})
}

// Clone returns a deep copy sharing no mutable state with s. The copy keeps
// the ID and revision.
func (s *Sketch) Clone() *Sketch {
	c := &Sketch{
		ID:        s.ID,
		Name:      s.Name,
		plane:     s.plane,
		elements:  slices.Clone(s.elements),
		relations: make([]*Relation, len(s.relations)),
		revision:  s.revision,
	}
	for i, r := range s.relations {
		if r != nil {
			c.relations[i] = &Relation{Kind: r.Kind, Elements: slices.Clone(r.Elements)}
		}
	}
	return c
}
