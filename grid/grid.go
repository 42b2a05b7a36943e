// Package grid couples an ordered list of coordinate axes with sparse
// track/content storage to form an N-dimensional coordinate index.
//
// Cells are addressed by a row-major flat index:
//
//	flat = Σ indexOf_i(tuple[i]) * stride[i]
//	stride[last] = 1, stride[i] = stride[i+1] * size[i+1]
//
// A grid is immutable once built. A collection that grows is re-expressed
// with Reindex, which yields a new grid and never modifies the old one, so
// readers holding the old grid keep a consistent view.
package grid

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/sparse"
)

// ErrShapeMismatch is returned when the sizes of a sparse array do not match
// the axes it is paired with.
var ErrShapeMismatch = errors.New("grid: array sizes do not match axes")

// shape holds the row-major layout of a list of axis sizes.
type shape struct {
	sizes   []int
	strides []int
	total   int
}

func newShape(axes []*coord.Axis) (shape, error) {
	sizes := make([]int, len(axes))
	for i, a := range axes {
		sizes[i] = a.Size()
	}
	total, err := sparse.TotalSize(sizes)
	if err != nil {
		return shape{}, err
	}
	strides := make([]int, len(sizes))
	stride := 1
	for i := len(sizes) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= sizes[i]
	}
	return shape{sizes: sizes, strides: strides, total: total}, nil
}

func (s shape) flat(idx []int) int {
	f := 0
	for i, x := range idx {
		f += x * s.strides[i]
	}
	return f
}

// decode writes the per-axis indexes of flat into idx.
func (s shape) decode(flat int, idx []int) {
	for i := range s.sizes {
		idx[i] = (flat / s.strides[i]) % s.sizes[i]
	}
}

// ND is an N-dimensional sparse coordinate index with payloads of type T.
//
// ND is immutable and safe for concurrent readers.
type ND[T any] struct {
	axes  []*coord.Axis
	shape shape
	array *sparse.Array[T]
}

// New pairs axes with an already filled sparse array. The array sizes must
// equal the axis sizes, in order.
func New[T any](axes []*coord.Axis, array *sparse.Array[T]) (*ND[T], error) {
	sh, err := newShape(axes)
	if err != nil {
		return nil, err
	}
	if !slices.Equal(sh.sizes, array.Sizes()) {
		return nil, fmt.Errorf("%w: axes %v, array %v", ErrShapeMismatch, sh.sizes, array.Sizes())
	}
	return &ND[T]{
		axes:  slices.Clone(axes),
		shape: sh,
		array: array,
	}, nil
}

// Axes returns the axes in order. The slice is a copy; the axes are shared.
func (n *ND[T]) Axes() []*coord.Axis { return slices.Clone(n.axes) }

// Axis returns the i-th axis.
func (n *ND[T]) Axis(i int) *coord.Axis { return n.axes[i] }

// Rank returns the number of axes.
func (n *ND[T]) Rank() int { return len(n.axes) }

// Sizes returns the axis sizes.
func (n *ND[T]) Sizes() []int { return slices.Clone(n.shape.sizes) }

// Strides returns the row-major strides.
func (n *ND[T]) Strides() []int { return slices.Clone(n.shape.strides) }

// TotalSize returns the number of cells in the cartesian product.
func (n *ND[T]) TotalSize() int { return n.shape.total }

// Array returns the underlying sparse array.
func (n *ND[T]) Array() *sparse.Array[T] { return n.array }

// Track returns the track array. It must not be modified.
func (n *ND[T]) Track() []int { return n.array.Track() }

// Content returns the content list. It must not be modified.
func (n *ND[T]) Content() []T { return n.array.Content() }

// Populated returns the number of populated cells.
func (n *ND[T]) Populated() int { return n.array.Populated() }

// Density returns the fraction of cells holding content. It is 0, never
// NaN, for a grid with no cells.
func (n *ND[T]) Density() float64 { return n.array.Density() }

// FlatIndex returns the flat index of t. It returns false when t has the
// wrong length or one of its values is not on the matching axis.
func (n *ND[T]) FlatIndex(t coord.Tuple) (int, bool) {
	if len(t) != len(n.axes) {
		return 0, false
	}
	f := 0
	for i, v := range t {
		x, ok := n.axes[i].IndexOf(v)
		if !ok {
			return 0, false
		}
		f += x * n.shape.strides[i]
	}
	return f, true
}

// FlatIndexOf returns the flat index of the given per-axis indexes.
func (n *ND[T]) FlatIndexOf(idx ...int) int { return n.shape.flat(idx) }

// Indexes returns the per-axis indexes of flat. It panics when flat is
// outside [0, TotalSize()).
func (n *ND[T]) Indexes(flat int) []int {
	n.checkFlat(flat)
	idx := make([]int, len(n.axes))
	n.shape.decode(flat, idx)
	return idx
}

// TupleAt returns the tuple addressed by flat. It panics when flat is outside
// [0, TotalSize()).
func (n *ND[T]) TupleAt(flat int) coord.Tuple {
	idx := n.Indexes(flat)
	t := make(coord.Tuple, len(idx))
	for i, x := range idx {
		t[i] = n.axes[i].ValueAt(x)
	}
	return t
}

func (n *ND[T]) checkFlat(flat int) {
	if flat < 0 || flat >= n.shape.total {
		panic(fmt.Sprintf("grid: flat index %d out of range [0,%d)", flat, n.shape.total))
	}
}

// ContentAt returns the payload at flat, or false when the cell is empty.
func (n *ND[T]) ContentAt(flat int) (T, bool) { return n.array.ContentAt(flat) }

// LocatorAt returns the locator of the record filling flat, or false when
// the cell is empty.
func (n *ND[T]) LocatorAt(flat int) (int, bool) { return n.array.LocatorAt(flat) }

// Lookup resolves a tuple to its payload. It returns false when the tuple
// is not addressable or the cell is empty.
func (n *ND[T]) Lookup(t coord.Tuple) (T, bool) {
	flat, ok := n.FlatIndex(t)
	if !ok {
		var zero T
		return zero, false
	}
	return n.array.ContentAt(flat)
}

// String returns a one-line diagnostic summary.
func (n *ND[T]) String() string {
	names := make([]string, len(n.axes))
	for i, a := range n.axes {
		names[i] = a.Name()
	}
	return fmt.Sprintf("grid%v sizes=%v populated=%d/%d density=%.4f",
		names, n.shape.sizes, n.Populated(), n.shape.total, n.Density())
}
