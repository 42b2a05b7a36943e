package gridex

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/gridex/grid"
)

// Handle is the stable reference readers hold to the current grid of a
// collection. Grids are immutable once built, so swapping the pointer is
// the whole publication step.
type Handle[T any] struct {
	cur     atomic.Pointer[grid.ND[T]]
	version atomic.Uint64

	// serializes Collection.Refresh
	mu sync.Mutex
}

// NewHandle creates a handle. If g is non-nil it is published as version 1.
func NewHandle[T any](g *grid.ND[T]) *Handle[T] {
	h := &Handle[T]{}
	if g != nil {
		h.Publish(g)
	}
	return h
}

// Load returns the current grid, or nil if nothing was published.
func (h *Handle[T]) Load() *grid.ND[T] {
	return h.cur.Load()
}

// Publish makes g the current grid and returns the grid it replaced.
func (h *Handle[T]) Publish(g *grid.ND[T]) *grid.ND[T] {
	old := h.cur.Swap(g)
	h.version.Add(1)
	return old
}

// Version returns the number of publications so far. It is bumped right
// after the swap, so a reader may briefly see a new grid with the previous
// version.
func (h *Handle[T]) Version() uint64 {
	return h.version.Load()
}
