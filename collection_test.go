package gridex

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/grid"
	"github.com/hupe1980/gridex/resource"
	"github.com/hupe1980/gridex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioSpecs = []AxisSpec{
	{Kind: coord.KindTime, Name: "time", Unit: "hours"},
	{Kind: coord.KindVertical, Name: "isobaric", Unit: "Pa"},
}

func records(tuples []coord.Tuple) SliceScanner[string] {
	out := make(SliceScanner[string], len(tuples))
	for i, tu := range tuples {
		out[i] = Record[string]{Tuple: tu, Locator: i + 1, Payload: tu.String()}
	}
	return out
}

func scenarioRecords(n int) SliceScanner[string] {
	return records(testutil.Cartesian(testutil.ScenarioValues(n)...))
}

func newCollection(t *testing.T, opts ...Option) *Collection[string] {
	t.Helper()
	coll, err := NewCollection[string]("temperature", scenarioSpecs, opts...)
	require.NoError(t, err)
	return coll
}

func TestNewCollection(t *testing.T) {
	_, err := NewCollection[string]("empty", nil)
	assert.ErrorIs(t, err, ErrNoAxes)

	coll := newCollection(t)
	assert.Equal(t, "temperature", coll.Name())
	assert.Equal(t, scenarioSpecs, coll.Specs())
}

func TestBuild(t *testing.T) {
	coll := newCollection(t)

	// Records arrive in random order; axes come out sorted.
	tuples := testutil.Cartesian(testutil.ScenarioValues(4)...)
	testutil.NewRNG(7).Shuffle(tuples)

	g, err := coll.Build(context.Background(), records(tuples))
	require.NoError(t, err)

	assert.Equal(t, []int{4, 8}, g.Sizes())
	assert.Equal(t, 1.0, g.Density())
	assert.Equal(t, "time", g.Axis(0).Name())
	assert.Equal(t, "Pa", g.Axis(1).Unit())

	for i, tu := range tuples {
		got, ok := g.Lookup(tu)
		require.True(t, ok)
		assert.Equal(t, tu.String(), got)

		flat, ok := g.FlatIndex(tu)
		require.True(t, ok)
		loc, ok := g.LocatorAt(flat)
		require.True(t, ok)
		assert.Equal(t, i+1, loc)
	}
}

func TestBuild_Partial(t *testing.T) {
	coll := newCollection(t)

	tuples := testutil.NewRNG(3).Sample(testutil.Cartesian(testutil.ScenarioValues(6)...), 0.5)
	g, err := coll.Build(context.Background(), records(tuples))
	require.NoError(t, err)

	assert.Equal(t, len(tuples), g.Populated())
	assert.InDelta(t, float64(len(tuples))/float64(g.TotalSize()), g.Density(), 1e-12)
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()
	coll := newCollection(t)

	t.Run("nil scanner", func(t *testing.T) {
		_, err := coll.Build(ctx, nil)
		assert.ErrorIs(t, err, ErrNilScanner)
	})

	t.Run("tuple length", func(t *testing.T) {
		_, err := coll.Build(ctx, records([]coord.Tuple{{coord.TimeOffset(1)}}))
		var tle *grid.TupleLengthError
		require.ErrorAs(t, err, &tle)
		assert.Equal(t, 2, tle.Expected)
		assert.Equal(t, 1, tle.Actual)
	})

	t.Run("axis errors are aggregated", func(t *testing.T) {
		_, err := coll.Build(ctx, records([]coord.Tuple{
			{coord.Level(1), coord.TimeOffset(1)},
		}))
		var merr *multierror.Error
		require.ErrorAs(t, err, &merr)
		assert.Len(t, merr.Errors, 2)

		var be *coord.BuildError
		assert.ErrorAs(t, err, &be)
	})

	t.Run("collision", func(t *testing.T) {
		tu := coord.Tuple{coord.TimeOffset(1), coord.Level(2)}
		_, err := coll.Build(ctx, records([]coord.Tuple{tu, tu}))
		var ce *grid.CollisionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 1, ce.Existing)
		assert.Equal(t, 2, ce.Incoming)
	})

	t.Run("zero locator", func(t *testing.T) {
		_, err := coll.Build(ctx, SliceScanner[string]{
			{Tuple: coord.Tuple{coord.TimeOffset(1), coord.Level(2)}},
		})
		assert.ErrorIs(t, err, grid.ErrZeroLocator)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := coll.Build(cctx, scenarioRecords(2))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("scanner error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := coll.Build(ctx, scannerFunc[string](func(context.Context, func(Record[string]) error) error {
			return boom
		}))
		assert.ErrorIs(t, err, boom)
	})
}

type scannerFunc[T any] func(ctx context.Context, fn func(Record[T]) error) error

func (f scannerFunc[T]) Scan(ctx context.Context, fn func(Record[T]) error) error { return f(ctx, fn) }

func TestBuild_MaxRecords(t *testing.T) {
	coll := newCollection(t, WithMaxRecords(10))

	_, err := coll.Build(context.Background(), scenarioRecords(3))
	assert.ErrorIs(t, err, ErrTooManyRecords)

	g, err := coll.Build(context.Background(), scenarioRecords(2))
	require.NoError(t, err)
	assert.Equal(t, 8, g.Populated())
}

func TestBuild_EmptyScan(t *testing.T) {
	coll := newCollection(t)

	g, err := coll.Build(context.Background(), SliceScanner[string]{})
	require.NoError(t, err)
	assert.Equal(t, 0, g.TotalSize())
	assert.Equal(t, 0.0, g.Density())
}

func TestBuild_CellBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{CellBudget: 10})
	coll := newCollection(t, WithResourceController(rc))

	_, err := coll.Build(context.Background(), scenarioRecords(3))
	assert.ErrorIs(t, err, resource.ErrOverBudget)

	_, err = coll.Build(context.Background(), scenarioRecords(2))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rc.CellUsage())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	coll := newCollection(t, WithMetricsCollector(metrics))

	first, stats, err := coll.Update(ctx, nil, scenarioRecords(10))
	require.NoError(t, err)
	assert.Equal(t, 200, stats.Carried)
	assert.Equal(t, []int{0, 0}, stats.Extended)

	next, stats, err := coll.Update(ctx, first, scenarioRecords(11))
	require.NoError(t, err)
	assert.InDelta(t, 0.826446, next.Density(), 1e-6)
	assert.Equal(t, 200, stats.Carried)
	assert.Equal(t, 42, stats.Dropped)
	assert.Equal(t, []int{11, 22}, next.Sizes())

	s := metrics.GetStats()
	assert.Equal(t, int64(2), s.BuildCount)
	assert.Equal(t, int64(1), s.ReindexCount)
	assert.Equal(t, int64(200), s.ReindexCarried)
	assert.Equal(t, int64(42), s.ReindexDropped)
}

func TestUpdate_RankMismatch(t *testing.T) {
	ctx := context.Background()
	coll := newCollection(t)
	prev, err := coll.Build(ctx, scenarioRecords(2))
	require.NoError(t, err)

	other, err := NewCollection[string]("other", []AxisSpec{{Kind: coord.KindTime, Name: "time"}})
	require.NoError(t, err)

	_, _, err = other.Update(ctx, prev, records([]coord.Tuple{{coord.TimeOffset(1)}}))
	var rme *grid.RankMismatchError
	assert.ErrorAs(t, err, &rme)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	metrics := &BasicMetricsCollector{}
	coll := newCollection(t,
		WithLogger(NewLogger(slog.NewTextHandler(&buf, nil))),
		WithMetricsCollector(metrics),
	)

	h := NewHandle[string](nil)
	assert.Nil(t, h.Load())
	assert.Equal(t, uint64(0), h.Version())

	first, err := coll.Refresh(ctx, h, scenarioRecords(10))
	require.NoError(t, err)
	assert.Same(t, first, h.Load())
	assert.Equal(t, uint64(1), h.Version())

	next, err := coll.Refresh(ctx, h, scenarioRecords(11))
	require.NoError(t, err)
	assert.Same(t, next, h.Load())
	assert.Equal(t, uint64(2), h.Version())
	assert.InDelta(t, 0.826446, next.Density(), 1e-6)

	// A failed refresh keeps the published grid.
	_, err = coll.Refresh(ctx, h, nil)
	assert.ErrorIs(t, err, ErrNilScanner)
	assert.Same(t, next, h.Load())
	assert.Equal(t, uint64(2), h.Version())

	s := metrics.GetStats()
	assert.Equal(t, int64(3), s.PublishCount)
	assert.Equal(t, int64(1), s.PublishErrors)
	assert.InDelta(t, 0.826446, s.LastPublishedDensity, 1e-6)

	out := buf.String()
	assert.Contains(t, out, "collection=temperature")
	assert.Contains(t, out, "published")
	assert.Contains(t, out, "reindex dropped cells")
}

func TestRefresh_GrowsFromEmpty(t *testing.T) {
	ctx := context.Background()
	coll := newCollection(t)
	h := NewHandle[string](nil)

	g, err := coll.Refresh(ctx, h, SliceScanner[string]{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, g.Sizes())

	g, stats, err := coll.Update(ctx, h.Load(), scenarioRecords(1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, g.Sizes())
	assert.Equal(t, 2, stats.Carried)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, []int{1, 2}, stats.Extended)

	for range 3 {
		g, err = coll.Refresh(ctx, h, scenarioRecords(1))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, g.Sizes())
		assert.Equal(t, 2, g.Populated())
		assert.Equal(t, 1.0, g.Density())
	}

	g, err = coll.Refresh(ctx, h, scenarioRecords(2))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, g.Sizes())
	assert.Equal(t, 2, g.Populated())
	assert.Equal(t, uint64(5), h.Version())
}

func TestRefresh_Concurrent(t *testing.T) {
	ctx := context.Background()
	coll := newCollection(t)
	h := NewHandle[string](nil)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coll.Refresh(ctx, h, scenarioRecords(i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(8), h.Version())
	require.NotNil(t, h.Load())
}

func TestHandle_Publish(t *testing.T) {
	coll := newCollection(t)
	a, err := coll.Build(context.Background(), scenarioRecords(1))
	require.NoError(t, err)
	b, err := coll.Build(context.Background(), scenarioRecords(2))
	require.NoError(t, err)

	h := NewHandle(a)
	assert.Equal(t, uint64(1), h.Version())
	assert.Same(t, a, h.Publish(b))
	assert.Same(t, b, h.Load())
	assert.Equal(t, uint64(2), h.Version())
}
