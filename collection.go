package gridex

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/grid"
	"github.com/hupe1980/gridex/sparse"
)

// Record is one indexed record: its coordinates, the locator the owning
// track stores for it and its payload.
type Record[T any] struct {
	Tuple   coord.Tuple
	Locator int
	Payload T
}

// Scanner streams the records of a collection.
//
// Scan calls fn once per record and stops at the first error fn returns.
type Scanner[T any] interface {
	Scan(ctx context.Context, fn func(Record[T]) error) error
}

// SliceScanner is a Scanner over an in-memory slice of records.
type SliceScanner[T any] []Record[T]

// Scan implements Scanner. It checks ctx before every record.
func (s SliceScanner[T]) Scan(ctx context.Context, fn func(Record[T]) error) error {
	for _, r := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// AxisSpec declares one axis of a collection.
type AxisSpec struct {
	Kind coord.Kind
	Name string
	Unit string
}

// Collection builds grids for a named collection with a fixed axis layout.
// A Collection is safe for concurrent use; every build works on its own
// state.
type Collection[T any] struct {
	name  string
	specs []AxisSpec
	opts  options
	log   *Logger
}

// NewCollection creates a collection with one axis per spec.
func NewCollection[T any](name string, specs []AxisSpec, optFns ...Option) (*Collection[T], error) {
	if len(specs) == 0 {
		return nil, ErrNoAxes
	}

	o := applyOptions(optFns)

	return &Collection[T]{
		name:  name,
		specs: append([]AxisSpec(nil), specs...),
		opts:  o,
		log:   o.logger.WithCollection(name),
	}, nil
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Specs returns the declared axes.
func (c *Collection[T]) Specs() []AxisSpec { return append([]AxisSpec(nil), c.specs...) }

// Build scans every record once, derives the canonical axes from the scanned
// coordinates and populates a new grid.
//
// Invalid coordinates are reported per axis as *coord.BuildError values
// collected into a *multierror.Error. Two records addressing the same cell
// fail with *grid.CollisionError.
func (c *Collection[T]) Build(ctx context.Context, scanner Scanner[T]) (*grid.ND[T], error) {
	return c.buildLogged(ctx, scanner, c.log)
}

func (c *Collection[T]) buildLogged(ctx context.Context, scanner Scanner[T], log *Logger) (*grid.ND[T], error) {
	start := time.Now()

	g, records, err := c.build(ctx, scanner)

	populated := 0
	if g != nil {
		populated = g.Populated()
	}
	c.opts.metricsCollector.RecordBuild(records, populated, time.Since(start), err)

	if err != nil {
		log.LogBuild(ctx, records, nil, 0, err)
		return nil, err
	}
	log.LogBuild(ctx, records, g.Sizes(), g.Density(), nil)

	return g, nil
}

func (c *Collection[T]) build(ctx context.Context, scanner Scanner[T]) (*grid.ND[T], int, error) {
	if scanner == nil {
		return nil, 0, ErrNilScanner
	}

	rc := c.opts.controller
	if err := rc.AcquireBuild(ctx); err != nil {
		return nil, 0, err
	}
	defer rc.ReleaseBuild()

	rank := len(c.specs)
	builders := make([]*coord.AxisBuilder, rank)
	for i, s := range c.specs {
		builders[i] = coord.NewAxisBuilder(s.Kind, s.Name, s.Unit)
	}

	var records []Record[T]
	err := scanner.Scan(ctx, func(r Record[T]) error {
		if c.opts.maxRecords > 0 && len(records) >= c.opts.maxRecords {
			return ErrTooManyRecords
		}
		if len(r.Tuple) != rank {
			return &grid.TupleLengthError{Expected: rank, Actual: len(r.Tuple)}
		}
		for i, v := range r.Tuple {
			builders[i].Add(v)
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, len(records), err
	}

	axes := make([]*coord.Axis, rank)
	var axisErr *multierror.Error
	for i, b := range builders {
		a, err := b.Finish()
		if err != nil {
			axisErr = multierror.Append(axisErr, err)
			continue
		}
		axes[i] = a
	}
	if err := axisErr.ErrorOrNil(); err != nil {
		return nil, len(records), err
	}

	sizes := make([]int, rank)
	for i, a := range axes {
		sizes[i] = a.Size()
	}
	total, err := sparse.TotalSize(sizes)
	if err != nil {
		return nil, len(records), err
	}
	if err := rc.AcquireCells(ctx, int64(total)); err != nil {
		return nil, len(records), err
	}
	defer rc.ReleaseCells(int64(total))

	b, err := grid.NewBuilder[T](axes)
	if err != nil {
		return nil, len(records), err
	}
	for _, r := range records {
		if err := b.Add(r.Tuple, r.Locator, r.Payload); err != nil {
			return nil, len(records), err
		}
	}

	g, err := b.Build()
	return g, len(records), err
}

// Update builds a grid from scanner and re-expresses it in the index space
// published by prev, so every position prev handed out keeps its meaning.
// A nil prev means nothing was published yet and the fresh grid is returned
// as is. A prev with an empty axis handed out no positions either; the
// result then carries every cell on prev's axes extended by the new values.
func (c *Collection[T]) Update(ctx context.Context, prev *grid.ND[T], scanner Scanner[T]) (*grid.ND[T], grid.ReindexStats, error) {
	curr, err := c.Build(ctx, scanner)
	if err != nil {
		return nil, grid.ReindexStats{}, err
	}
	if prev == nil {
		return curr, grid.ReindexStats{Carried: curr.Populated(), Extended: make([]int, curr.Rank())}, nil
	}

	start := time.Now()
	out, stats, err := curr.ReindexWithStats(prev)
	if err == nil && out.TotalSize() == 0 && curr.TotalSize() > 0 {
		out, stats, err = anchorEmpty(prev, curr)
	}
	c.opts.metricsCollector.RecordReindex(stats.Carried, stats.Dropped, time.Since(start), err)
	c.log.LogReindex(ctx, stats.Carried, stats.Dropped, stats.Extended, err)
	if err != nil {
		return nil, grid.ReindexStats{}, err
	}

	return out, stats, nil
}

// anchorEmpty handles a prev with an empty axis. Such a grid handed out no
// positions, so curr is re-expressed on prev's axes extended by curr's values
// and every cell is carried. Later updates anchor on the result.
func anchorEmpty[T any](prev, curr *grid.ND[T]) (*grid.ND[T], grid.ReindexStats, error) {
	axes := make([]*coord.Axis, curr.Rank())
	for i := range axes {
		ext, err := coord.Extend(prev.Axis(i), curr.Axis(i))
		if err != nil {
			return nil, grid.ReindexStats{}, err
		}
		axes[i] = ext
	}

	b, err := grid.NewBuilder[T](axes)
	if err != nil {
		return nil, grid.ReindexStats{}, err
	}
	base, err := b.Build()
	if err != nil {
		return nil, grid.ReindexStats{}, err
	}

	out, stats, err := curr.ReindexWithStats(base)
	if err != nil {
		return nil, grid.ReindexStats{}, err
	}
	for i, a := range axes {
		stats.Extended[i] = a.Size() - prev.Axis(i).Size()
	}
	return out, stats, nil
}

// Refresh updates the grid published through h from scanner and publishes
// the result. Concurrent refreshes of the same handle are serialized so no
// update is lost; readers of h never block.
func (c *Collection[T]) Refresh(ctx context.Context, h *Handle[T], scanner Scanner[T]) (*grid.ND[T], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, _, err := c.Update(ctx, h.Load(), scanner)
	if err != nil {
		c.opts.metricsCollector.RecordPublish(0, err)
		c.log.LogPublish(ctx, h.Version(), err)
		return nil, err
	}

	h.Publish(next)

	c.opts.metricsCollector.RecordPublish(next.Density(), nil)
	c.log.LogPublish(ctx, h.Version(), nil)

	return next, nil
}
