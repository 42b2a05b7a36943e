package grid

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/gridex/coord"
)

// ReindexStats describes what a reindex carried over.
type ReindexStats struct {
	// Carried is the number of cells whose locator and payload moved to
	// the result.
	Carried int
	// Dropped is the number of populated cells that touch a value unknown
	// to the target and so have no home in the published index space.
	Dropped int
	// Extended is, per axis, the number of values appended after the
	// target's values.
	Extended []int
}

// Reindex re-expresses n, a freshly built grid, in the index space
// published by prev. See ReindexWithStats.
func (n *ND[T]) Reindex(prev *ND[T]) (*ND[T], error) {
	out, _, err := n.ReindexWithStats(prev)
	return out, err
}

// ReindexWithStats re-expresses n, a freshly built grid, in the index space
// published by prev, and reports what was carried over.
//
// Every value of a prev axis keeps its index. Values only n knows are
// appended to the axis after prev's values, in domain order, so positions
// already handed to readers are never renumbered. A populated cell of n is
// carried when every one of its values is on prev's axes; cells touching an
// appended value are dropped. The density of the result is the fraction of
// its cells carried over.
//
// When an axis of prev is empty, prev published no cells and the result is
// an empty grid over prev's axes.
//
// Grids with a different axis count or axis kind sequence fail with
// *RankMismatchError. Neither n nor prev is modified.
func (n *ND[T]) ReindexWithStats(prev *ND[T]) (*ND[T], ReindexStats, error) {
	if err := checkRank(prev.axes, n.axes); err != nil {
		return nil, ReindexStats{}, err
	}

	rank := len(n.axes)
	stats := ReindexStats{Extended: make([]int, rank)}

	if slices.ContainsFunc(prev.axes, func(a *coord.Axis) bool { return a.Size() == 0 }) {
		stats.Dropped = n.Populated()
		out, err := assemble[T](prev.axes, prev.shape, make([]int, prev.shape.total), nil)
		return out, stats, err
	}

	axes := make([]*coord.Axis, rank)
	known := make([]*bitset.BitSet, rank)
	remap := make([][]int, rank)
	for i, a := range n.axes {
		ext, err := coord.Extend(prev.axes[i], a)
		if err != nil {
			return nil, ReindexStats{}, err
		}
		axes[i] = ext
		stats.Extended[i] = ext.Size() - prev.axes[i].Size()

		known[i] = bitset.New(uint(a.Size()))
		remap[i] = make([]int, a.Size())
		for j := 0; j < a.Size(); j++ {
			v := a.ValueAt(j)
			if prev.axes[i].Contains(v) {
				known[i].Set(uint(j))
			}
			remap[i][j], _ = ext.IndexOf(v)
		}
	}

	sh, err := newShape(axes)
	if err != nil {
		return nil, ReindexStats{}, err
	}

	track := make([]int, sh.total)
	cells := make([]cell[T], 0, n.Populated())
	src := make([]int, rank)
	dst := make([]int, rank)
	n.array.Each(func(flat, locator int, payload T) bool {
		n.shape.decode(flat, src)
		for i, x := range src {
			if !known[i].Test(uint(x)) {
				stats.Dropped++
				return true
			}
			dst[i] = remap[i][x]
		}
		f := sh.flat(dst)
		track[f] = locator
		cells = append(cells, cell[T]{flat: f, payload: payload})
		return true
	})
	stats.Carried = len(cells)

	out, err := assemble(axes, sh, track, cells)
	if err != nil {
		return nil, ReindexStats{}, err
	}
	return out, stats, nil
}

func checkRank(prev, curr []*coord.Axis) error {
	kinds := func(axes []*coord.Axis) []coord.Kind {
		k := make([]coord.Kind, len(axes))
		for i, a := range axes {
			k[i] = a.Kind()
		}
		return k
	}
	pk, ck := kinds(prev), kinds(curr)
	if !slices.Equal(pk, ck) {
		return &RankMismatchError{Prev: pk, Curr: ck}
	}
	return nil
}
