package sketch

import "fmt"

// InvalidElementReferenceError reports a relation (or edit) naming an
// element that does not exist, has been removed, or has the wrong kind.
// Op is the relation kind or the edit being attempted; Arg is the argument
// position, or -1 when the failure is not positional.
type InvalidElementReferenceError struct {
	Op      string
	Arg     int
	Element ElementID
	Reason  string
}

func (e *InvalidElementReferenceError) Error() string {
	if e.Arg < 0 {
		return fmt.Sprintf("sketch: %s: element %d: %s", e.Op, e.Element, e.Reason)
	}
	return fmt.Sprintf("sketch: %s: argument %d (element %d): %s", e.Op, e.Arg, e.Element, e.Reason)
}

// UnknownRelationError reports a relation ID that is out of range or
// already removed.
type UnknownRelationError struct {
	Relation RelationID
}

func (e *UnknownRelationError) Error() string {
	return fmt.Sprintf("sketch: relation %d does not exist", e.Relation)
}
