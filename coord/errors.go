package coord

import "fmt"

// BuildError reports a malformed or conflicting value found while building
// an axis. It aborts the build of that axis.
type BuildError struct {
	// Axis is the name of the axis being built.
	Axis string
	// Value is the offending value.
	Value Value
	// Other is the value Value conflicts with, if any.
	Other Value
	// Reason describes the problem.
	Reason string
}

func (e *BuildError) Error() string {
	if !e.Other.IsZero() {
		return fmt.Sprintf("coord: axis %q: %s: %s vs %s", e.Axis, e.Reason, e.Value, e.Other)
	}
	return fmt.Sprintf("coord: axis %q: %s: %s", e.Axis, e.Reason, e.Value)
}
