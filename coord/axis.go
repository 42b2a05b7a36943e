package coord

import (
	"fmt"
	"slices"
)

// Axis is an immutable, duplicate-free, ordered set of values of one kind.
//
// Index i is assigned to the i-th value and never changes for the lifetime of
// the axis. Axes are safe for concurrent use.
type Axis struct {
	kind   Kind
	name   string
	unit   string
	values []Value
	index  map[Value]int
	sorted bool
}

func newAxis(kind Kind, name, unit string, values []Value, sorted bool) *Axis {
	index := make(map[Value]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	return &Axis{
		kind:   kind,
		name:   name,
		unit:   unit,
		values: values,
		index:  index,
		sorted: sorted,
	}
}

// Kind returns the kind of every value on the axis.
func (a *Axis) Kind() Kind { return a.kind }

// Name returns the display name.
func (a *Axis) Name() string { return a.name }

// Unit returns the unit string.
func (a *Axis) Unit() string { return a.unit }

// Size returns the number of distinct values.
func (a *Axis) Size() int { return len(a.values) }

// Sorted reports whether index order equals domain order. Axes produced by
// a builder are always sorted; an extended axis is unsorted when a value
// appended after the published ones sorts before one of them.
func (a *Axis) Sorted() bool { return a.sorted }

// ValueAt returns the value at index i. It panics if i is outside [0, Size()).
func (a *Axis) ValueAt(i int) Value {
	if i < 0 || i >= len(a.values) {
		panic(fmt.Sprintf("coord: index %d out of range [0,%d) on axis %q", i, len(a.values), a.name))
	}
	return a.values[i]
}

// IndexOf returns the index of v, or false when v is not on the axis.
func (a *Axis) IndexOf(v Value) (int, bool) {
	i, ok := a.index[v]
	return i, ok
}

// Contains reports whether v is on the axis.
func (a *Axis) Contains(v Value) bool {
	_, ok := a.index[v]
	return ok
}

// Values returns a copy of the values in index order.
func (a *Axis) Values() []Value {
	return slices.Clone(a.values)
}

// Equal reports whether both axes have the same kind, name, unit and values
// in the same order.
func (a *Axis) Equal(o *Axis) bool {
	if a == o {
		return true
	}
	if a == nil || o == nil {
		return false
	}
	return a.kind == o.kind && a.name == o.name && a.unit == o.unit && slices.Equal(a.values, o.values)
}

// String returns a short description such as `time[hours] size=12`.
func (a *Axis) String() string {
	return fmt.Sprintf("%s(%s)[%s] size=%d", a.name, a.kind, a.unit, len(a.values))
}

// NewAxis builds an axis directly from values already in index order. It is
// meant for decoders restoring a persisted axis; the values must be distinct
// and of the given kind.
func NewAxis(kind Kind, name, unit string, values []Value) (*Axis, error) {
	sorted := true
	seen := make(map[Value]struct{}, len(values))
	for i, v := range values {
		if v.kind != kind {
			return nil, &BuildError{Axis: name, Value: v, Reason: "kind " + v.kind.String() + " does not match axis kind " + kind.String()}
		}
		if _, dup := seen[v]; dup {
			return nil, &BuildError{Axis: name, Value: v, Reason: "duplicate value"}
		}
		seen[v] = struct{}{}
		if i > 0 && Compare(values[i-1], v) >= 0 {
			sorted = false
		}
	}
	return newAxis(kind, name, unit, slices.Clone(values), sorted), nil
}

// Extend returns the axis that keeps every value of prev at its existing
// index and appends, in domain order, the values of curr that prev does not
// have. The name and unit of prev are kept.
//
// A value of curr that occupies the same position as a value of prev without
// being equal to it (for example the same ensemble member under another code)
// is a conflict and fails with a BuildError, as does mixing layers and single
// levels on a vertical axis.
func Extend(prev, curr *Axis) (*Axis, error) {
	if prev.kind != curr.kind {
		return nil, &BuildError{Axis: prev.name, Reason: "cannot extend " + prev.kind.String() + " axis with " + curr.kind.String() + " axis"}
	}

	var added []Value
	for _, v := range curr.values {
		if prev.Contains(v) {
			continue
		}
		for _, p := range prev.values {
			if Compare(p, v) == 0 {
				return nil, &BuildError{Axis: prev.name, Value: v, Other: p, Reason: "conflicting values compare equal"}
			}
		}
		added = append(added, v)
	}
	if len(added) == 0 {
		return prev, nil
	}

	slices.SortFunc(added, Compare)
	sorted := prev.sorted
	if n := len(prev.values); n > 0 && Compare(prev.values[n-1], added[0]) > 0 {
		sorted = false
	}

	values := make([]Value, 0, len(prev.values)+len(added))
	values = append(values, prev.values...)
	values = append(values, added...)
	if err := checkVertical(prev.kind, prev.name, values); err != nil {
		return nil, err
	}
	return newAxis(prev.kind, prev.name, prev.unit, values, sorted), nil
}
