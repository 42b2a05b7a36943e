package grid

import (
	"cmp"
	"slices"

	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/sparse"
)

type cell[T any] struct {
	flat    int
	payload T
}

// Builder populates the track and content of a grid from individual
// records. Axes must already be finished.
//
// A Builder is not safe for concurrent use and can be built once.
type Builder[T any] struct {
	axes  []*coord.Axis
	shape shape
	track []int
	cells []cell[T]
	idx   []int
	built bool
}

// NewBuilder returns a Builder over axes.
func NewBuilder[T any](axes []*coord.Axis) (*Builder[T], error) {
	sh, err := newShape(axes)
	if err != nil {
		return nil, err
	}
	return &Builder[T]{
		axes:  slices.Clone(axes),
		shape: sh,
		track: make([]int, sh.total),
		idx:   make([]int, len(axes)),
	}, nil
}

// Add places the record identified by locator at the cell addressed by t.
//
// It fails with *CollisionError when another record already fills that
// cell, with *UnknownValueError when a value of t is not on its axis and
// with ErrZeroLocator for locator 0.
func (b *Builder[T]) Add(t coord.Tuple, locator int, payload T) error {
	if b.built {
		return ErrBuilt
	}
	if locator == 0 {
		return ErrZeroLocator
	}
	if len(t) != len(b.axes) {
		return &TupleLengthError{Expected: len(b.axes), Actual: len(t)}
	}
	for i, v := range t {
		x, ok := b.axes[i].IndexOf(v)
		if !ok {
			return &UnknownValueError{Axis: b.axes[i].Name(), Value: v}
		}
		b.idx[i] = x
	}

	flat := b.shape.flat(b.idx)
	if existing := b.track[flat]; existing != 0 {
		return &CollisionError{Flat: flat, Tuple: slices.Clone(t), Existing: existing, Incoming: locator}
	}
	b.track[flat] = locator
	b.cells = append(b.cells, cell[T]{flat: flat, payload: payload})
	return nil
}

// Len returns the number of records added.
func (b *Builder[T]) Len() int { return len(b.cells) }

// Build returns the grid. Content is laid out in ascending flat order.
func (b *Builder[T]) Build() (*ND[T], error) {
	if b.built {
		return nil, ErrBuilt
	}
	b.built = true
	return assemble(b.axes, b.shape, b.track, b.cells)
}

func assemble[T any](axes []*coord.Axis, sh shape, track []int, cells []cell[T]) (*ND[T], error) {
	slices.SortFunc(cells, func(a, b cell[T]) int { return cmp.Compare(a.flat, b.flat) })
	content := make([]T, len(cells))
	for i, c := range cells {
		content[i] = c.payload
	}

	array, err := sparse.New[T](sh.sizes)
	if err != nil {
		return nil, err
	}
	if err := array.SetTrack(track); err != nil {
		return nil, err
	}
	if err := array.SetContent(content); err != nil {
		return nil, err
	}
	return &ND[T]{axes: slices.Clone(axes), shape: sh, array: array}, nil
}
