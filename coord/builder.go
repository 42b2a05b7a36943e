package coord

import (
	"github.com/google/btree"
)

const builderDegree = 32

// AxisBuilder accumulates raw observations of one axis and freezes them
// into an Axis.
//
// An AxisBuilder is not safe for concurrent use.
type AxisBuilder struct {
	kind Kind
	name string
	unit string
	tree *btree.BTreeG[Value]
	n    int
	err  *BuildError
}

// NewAxisBuilder returns an empty builder for an axis of the given kind.
func NewAxisBuilder(kind Kind, name, unit string) *AxisBuilder {
	return &AxisBuilder{
		kind: kind,
		name: name,
		unit: unit,
		tree: btree.NewG[Value](builderDegree, func(a, b Value) bool {
			return Compare(a, b) < 0
		}),
	}
}

// Add records one observation. Repeats are allowed. Malformed or conflicting
// values do not fail here; the first problem is reported by Finish.
func (b *AxisBuilder) Add(v Value) {
	b.n++
	if b.err != nil {
		return
	}
	if v.kind != b.kind {
		b.err = &BuildError{Axis: b.name, Value: v, Reason: "kind " + v.kind.String() + " does not match axis kind " + b.kind.String()}
		return
	}
	if reason := v.validate(); reason != "" {
		b.err = &BuildError{Axis: b.name, Value: v, Reason: reason}
		return
	}
	if old, found := b.tree.ReplaceOrInsert(v); found && old != v {
		b.err = &BuildError{Axis: b.name, Value: v, Other: old, Reason: "conflicting values compare equal"}
	}
}

// Len returns the number of observations added so far, repeats included.
func (b *AxisBuilder) Len() int { return b.n }

// Distinct returns the number of distinct values added so far.
func (b *AxisBuilder) Distinct() int { return b.tree.Len() }

// Finish returns the axis holding the distinct observed values in domain
// order. A builder with no observations yields a valid empty axis.
//
// The builder can be reused after Finish; later calls include earlier
// observations.
func (b *AxisBuilder) Finish() (*Axis, error) {
	if b.err != nil {
		return nil, b.err
	}

	values := make([]Value, 0, b.tree.Len())
	b.tree.Ascend(func(v Value) bool {
		values = append(values, v)
		return true
	})
	if err := checkVertical(b.kind, b.name, values); err != nil {
		return nil, err
	}

	return newAxis(b.kind, b.name, b.unit, values, true), nil
}

// checkVertical rejects a vertical axis holding both layers and single
// levels.
func checkVertical(kind Kind, name string, values []Value) error {
	if kind != KindVertical {
		return nil
	}
	var level, layer Value
	for _, v := range values {
		switch {
		case v.layer && layer.IsZero():
			layer = v
		case !v.layer && level.IsZero():
			level = v
		}
	}
	if layer.IsZero() || level.IsZero() {
		return nil
	}
	return &BuildError{Axis: name, Value: layer, Other: level, Reason: "axis mixes layers and single levels"}
}
