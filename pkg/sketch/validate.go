package sketch

import (
	"fmt"
	"math"
	"slices"

	"github.com/chazu/contour/pkg/geom"
)

// ValidationSeverity indicates whether a finding blocks solving or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks solving
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. Element and
// Relation are NoElement / NoRelation when the finding is not tied to one.
// Err holds the underlying error, if any.
type ValidationError struct {
	Element  ElementID
	Relation RelationID
	Message  string
	Severity ValidationSeverity
	Err      error
}

func (e ValidationError) Error() string {
	switch {
	case e.Relation != NoRelation:
		return fmt.Sprintf("[%s] relation %d: %s", e.Severity, e.Relation, e.Message)
	case e.Element != NoElement:
		return fmt.Sprintf("[%s] element %d: %s", e.Severity, e.Element, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs every tier over s: structural references, element geometry
// and relation redundancy. It never mutates the sketch.
func Validate(s *Sketch) ValidationResult {
	var all []ValidationError
	all = append(all, validateReferences(s)...)
	all = append(all, validateGeometry(s)...)
	all = append(all, validateRedundancy(s)...)

	var result ValidationResult
	for _, f := range all {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// validateReferences re-checks every live relation against the element
// arena and the relation signatures.
func validateReferences(s *Sketch) []ValidationError {
	var errs []ValidationError
	for _, rid := range s.Relations() {
		r := s.relations[rid]
		kinds := make([]ElementKind, 0, len(r.Elements))
		for _, id := range r.Elements {
			e, ok := s.Element(id)
			if !ok {
				errs = append(errs, ValidationError{
					Element:  id,
					Relation: rid,
					Message:  fmt.Sprintf("%s refers to missing element %d", r.Kind, id),
					Severity: SeverityError,
				})
				continue
			}
			kinds = append(kinds, e.Kind())
		}
		if len(kinds) != len(r.Elements) {
			continue
		}
		if !slices.ContainsFunc(signatures[r.Kind], func(sig signature) bool {
			_, ok := sig.accepts(kinds)
			return ok
		}) {
			errs = append(errs, ValidationError{
				Element:  NoElement,
				Relation: rid,
				Message:  fmt.Sprintf("%s does not accept element kinds %v", r.Kind, kinds),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateGeometry flags elements that are degenerate or leave the sketch
// plane.
func validateGeometry(s *Sketch) []ValidationError {
	var errs []ValidationError
	offPlane := func(id ElementID, pts ...geom.Point) {
		for _, p := range pts {
			if d := s.plane.SignedDistance(p); math.Abs(d) > geom.RadiusTolerance {
				errs = append(errs, ValidationError{
					Element:  id,
					Relation: NoRelation,
					Message:  fmt.Sprintf("%v lies %.3g off the sketch plane", p, d),
					Severity: SeverityWarning,
				})
				return
			}
		}
	}

	for _, id := range s.Elements() {
		switch e := s.elements[id].(type) {
		case PointElement:
			offPlane(id, e.At)
		case LineElement:
			if e.Line.Length() < geom.Epsilon {
				errs = append(errs, ValidationError{
					Element:  id,
					Relation: NoRelation,
					Message:  "line has zero length",
					Severity: SeverityError,
					Err:      &geom.DegenerateInputError{Op: "line", Reason: "zero length"},
				})
				continue
			}
			offPlane(id, e.Line.A, e.Line.B)
		case ArcElement:
			if err := e.Arc.Validate(); err != nil {
				errs = append(errs, ValidationError{
					Element:  id,
					Relation: NoRelation,
					Message:  err.Error(),
					Severity: SeverityError,
					Err:      err,
				})
				continue
			}
			offPlane(id, e.Arc.Center, e.Arc.Start, e.Arc.End)
		}
	}
	return errs
}

// validateRedundancy warns about relations that add nothing or that pull
// against each other on a single element.
func validateRedundancy(s *Sketch) []ValidationError {
	var errs []ValidationError

	type key struct {
		kind RelationKind
		ids  string
	}
	seen := make(map[key]RelationID)
	horizontal := make(map[ElementID]bool)
	vertical := make(map[ElementID]bool)

	for _, rid := range s.Relations() {
		r := s.relations[rid]
		ids := slices.Clone(r.Elements)
		if symmetric(r.Kind) {
			slices.Sort(ids)
		}
		k := key{kind: r.Kind, ids: fmt.Sprint(ids)}
		if first, dup := seen[k]; dup {
			errs = append(errs, ValidationError{
				Element:  NoElement,
				Relation: rid,
				Message:  fmt.Sprintf("duplicates relation %d", first),
				Severity: SeverityWarning,
			})
			continue
		}
		seen[k] = rid

		switch r.Kind {
		case Horizontal:
			horizontal[r.Elements[0]] = true
		case Vertical:
			vertical[r.Elements[0]] = true
		case Coincident:
			a, _ := s.Element(r.Elements[0])
			b, _ := s.Element(r.Elements[1])
			pa, okA := a.(PointElement)
			pb, okB := b.(PointElement)
			if okA && okB && geom.Near(pa.At, pb.At, geom.Epsilon) {
				errs = append(errs, ValidationError{
					Element:  NoElement,
					Relation: rid,
					Message:  "points already coincide",
					Severity: SeverityWarning,
				})
			}
		}
	}

	for _, id := range s.Elements() {
		if horizontal[id] && vertical[id] {
			errs = append(errs, ValidationError{
				Element:  id,
				Relation: NoRelation,
				Message:  "line is both horizontal and vertical; it can only collapse to a point",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// symmetric reports whether argument order is irrelevant for kind.
func symmetric(kind RelationKind) bool {
	switch kind {
	case Perpendicular, Parallel, Colinear, Coradial, Equal:
		return true
	}
	return false
}
