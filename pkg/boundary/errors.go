package boundary

import "fmt"

// Check names the assembly stage that rejected a loop.
type Check int

const (
	CheckElement    Check = iota // an element is empty or degenerate
	CheckContinuity              // consecutive edges do not meet
	CheckClosure                 // the last edge does not return to the first
	CheckPlanarity               // edges do not share one plane
	CheckSimplicity              // two non-adjacent edges touch
	CheckWinding                 // the loop encloses no area
)

func (c Check) String() string {
	switch c {
	case CheckElement:
		return "element"
	case CheckContinuity:
		return "continuity"
	case CheckClosure:
		return "closure"
	case CheckPlanarity:
		return "planarity"
	case CheckSimplicity:
		return "simplicity"
	case CheckWinding:
		return "winding"
	default:
		return fmt.Sprintf("Check(%d)", int(c))
	}
}

// InvalidLoopError reports the failed check and the offending edges.
// Index and Other are flattened edge indices (-1 when unused); Element and
// OtherElement are the top-level loop elements those edges came from.
type InvalidLoopError struct {
	Check        Check
	Index        int
	Other        int
	Element      int
	OtherElement int
	Reason       string
}

func (e *InvalidLoopError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("boundary: %s check failed: %s", e.Check, e.Reason)
	case e.Other < 0:
		return fmt.Sprintf("boundary: %s check failed at edge %d (element %d): %s", e.Check, e.Index, e.Element, e.Reason)
	default:
		return fmt.Sprintf("boundary: %s check failed between edges %d and %d (elements %d and %d): %s",
			e.Check, e.Index, e.Other, e.Element, e.OtherElement, e.Reason)
	}
}

// Pair returns the two top-level element indices named by the error.
func (e *InvalidLoopError) Pair() (int, int) { return e.Element, e.OtherElement }
