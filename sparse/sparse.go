// Package sparse provides the flat track/content storage behind a
// coordinate grid.
//
// An Array covers the cartesian product of a list of axis sizes. The track
// holds, per flat cell, a caller-chosen non-zero locator of the record that
// fills it, or 0 when the cell is empty. The content holds one payload per
// populated cell, ordered by ascending flat index.
//
// Populated cells are also kept in a roaring bitmap for iteration and set
// operations. A rank directory of one occupancy word and one running count
// per 64 cells resolves a flat index to its content position in constant
// time.
package sparse

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrTooLarge is returned when the product of the sizes does not fit the
	// 32-bit cell address space.
	ErrTooLarge = errors.New("sparse: total size exceeds 2^32-1 cells")

	// ErrNegativeSize is returned for a negative axis size.
	ErrNegativeSize = errors.New("sparse: negative size")
)

// LengthError reports a track or content slice of the wrong length.
type LengthError struct {
	What     string
	Expected int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("sparse: %s length mismatch: expected %d, got %d", e.What, e.Expected, e.Actual)
}

// Array is flat storage over the cartesian product of the axis sizes.
//
// An Array is filled once with SetTrack and SetContent and must not be
// modified after it has been handed to readers.
type Array[T any] struct {
	sizes     []int
	totalSize int
	track     []int
	content   []T
	occupied  *roaring.Bitmap

	// words[w] has bit b set when cell 64*w+b is populated; before[w] counts
	// the populated cells ahead of word w.
	words  []uint64
	before []uint32
}

// New returns an empty Array over the given sizes. The total size is the
// product of the sizes; it is 0 when sizes is empty or any size is 0.
func New[T any](sizes []int) (*Array[T], error) {
	total, err := TotalSize(sizes)
	if err != nil {
		return nil, err
	}
	return &Array[T]{
		sizes:     slices.Clone(sizes),
		totalSize: total,
		track:     make([]int, total),
		occupied:  roaring.New(),
	}, nil
}

// TotalSize returns the product of sizes, validating it the same way New does.
func TotalSize(sizes []int) (int, error) {
	if len(sizes) == 0 {
		return 0, nil
	}
	total := 1
	for _, s := range sizes {
		if s < 0 {
			return 0, ErrNegativeSize
		}
		if s == 0 {
			return 0, nil
		}
	}
	for _, s := range sizes {
		if uint64(s) > math.MaxUint32 || uint64(total)*uint64(s) > math.MaxUint32 {
			return 0, ErrTooLarge
		}
		total *= s
	}
	return total, nil
}

// SetTrack installs the full track array. The slice is retained; callers
// must not modify it afterwards.
func (a *Array[T]) SetTrack(track []int) error {
	if len(track) != a.totalSize {
		return &LengthError{What: "track", Expected: a.totalSize, Actual: len(track)}
	}
	occupied := roaring.New()
	words := make([]uint64, (len(track)+63)/64)
	for i, loc := range track {
		if loc != 0 {
			occupied.Add(uint32(i))
			words[i/64] |= 1 << (i % 64)
		}
	}
	occupied.RunOptimize()

	before := make([]uint32, len(words))
	var n uint32
	for w, word := range words {
		before[w] = n
		n += uint32(bits.OnesCount64(word))
	}

	a.track = track
	a.occupied = occupied
	a.words = words
	a.before = before
	return nil
}

// SetContent installs the payloads of the populated cells, in ascending flat
// index order. Only the length is validated.
func (a *Array[T]) SetContent(content []T) error {
	if n := a.Populated(); len(content) != n {
		return &LengthError{What: "content", Expected: n, Actual: len(content)}
	}
	a.content = content
	return nil
}

// Sizes returns a copy of the axis sizes.
func (a *Array[T]) Sizes() []int { return slices.Clone(a.sizes) }

// TotalSize returns the number of cells.
func (a *Array[T]) TotalSize() int { return a.totalSize }

// Track returns the track array. It must not be modified.
func (a *Array[T]) Track() []int { return a.track }

// Content returns the content list. It must not be modified.
func (a *Array[T]) Content() []T { return a.content }

// Occupied returns a copy of the bitmap of populated flat indexes.
func (a *Array[T]) Occupied() *roaring.Bitmap { return a.occupied.Clone() }

// Populated returns the number of cells with a non-zero locator.
func (a *Array[T]) Populated() int { return int(a.occupied.GetCardinality()) }

// Density returns the fraction of cells holding content, in [0, 1].
// An array with no cells has density 0.
func (a *Array[T]) Density() float64 {
	if a.totalSize == 0 {
		return 0
	}
	return float64(len(a.content)) / float64(a.totalSize)
}

// LocatorAt returns the locator stored at flat, or false when the cell is
// empty or out of range.
func (a *Array[T]) LocatorAt(flat int) (int, bool) {
	if flat < 0 || flat >= a.totalSize {
		return 0, false
	}
	loc := a.track[flat]
	return loc, loc != 0
}

// ContentAt returns the payload of the cell at flat, or false when the cell
// is empty, out of range or its content has not been installed.
func (a *Array[T]) ContentAt(flat int) (T, bool) {
	var zero T
	if flat < 0 || flat >= a.totalSize || a.track[flat] == 0 {
		return zero, false
	}
	w, b := flat/64, uint(flat%64)
	pos := int(a.before[w]) + bits.OnesCount64(a.words[w]&(1<<b-1))
	if pos >= len(a.content) {
		return zero, false
	}
	return a.content[pos], true
}

// Each calls fn for every populated cell in ascending flat order, stopping
// when fn returns false. Content is the zero value when it has not been
// installed.
func (a *Array[T]) Each(fn func(flat, locator int, content T) bool) {
	it := a.occupied.Iterator()
	pos := 0
	for it.HasNext() {
		flat := int(it.Next())
		var c T
		if pos < len(a.content) {
			c = a.content[pos]
		}
		if !fn(flat, a.track[flat], c) {
			return
		}
		pos++
	}
}
