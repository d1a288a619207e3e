package geom

import "fmt"

// DegenerateInputError reports zero-length vectors, non-positive radii and
// similar inputs that cannot describe the requested primitive.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("geom: %s: degenerate input: %s", e.Op, e.Reason)
}

// UnsupportedConversionError reports a line representation that cannot be
// converted into the requested one.
type UnsupportedConversionError struct {
	From   LineKind
	To     LineKind
	Reason string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("geom: cannot convert %s line to %s: %s", e.From, e.To, e.Reason)
}

// DegenerateProjectionError reports a projection that collapses a line to a
// point, i.e. the line runs parallel to the plane normal.
type DegenerateProjectionError struct {
	Reason string
}

func (e *DegenerateProjectionError) Error() string {
	return "geom: degenerate projection: " + e.Reason
}

// InvalidArgumentError reports an out-of-range scalar argument such as a
// zero segment count or a negative width.
type InvalidArgumentError struct {
	Op     string
	Arg    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("geom: %s: invalid %s: %s", e.Op, e.Arg, e.Reason)
}
