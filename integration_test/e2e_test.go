package integration_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/gridex"
	"github.com/hupe1980/gridex/blobstore"
	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/grid"
	"github.com/hupe1980/gridex/indexfile"
	"github.com/hupe1980/gridex/model"
	"github.com/hupe1980/gridex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var specs = []gridex.AxisSpec{
	{Kind: coord.KindTime, Name: "time", Unit: "hours"},
	{Kind: coord.KindVertical, Name: "isobaric", Unit: "Pa"},
}

func refs(tuples []coord.Tuple) gridex.SliceScanner[model.Ref] {
	out := make(gridex.SliceScanner[model.Ref], len(tuples))
	for i, tu := range tuples {
		out[i] = gridex.Record[model.Ref]{
			Tuple:   tu,
			Locator: i + 1,
			Payload: model.Ref{File: 1, Offset: int64(i) * 100, Length: 100},
		}
	}
	return out
}

// TestE2E_Restart publishes, reopens the store from scratch and extends the
// stored grid with a later run.
func TestE2E_Restart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	coll, err := gridex.NewCollection[model.Ref]("temperature", specs)
	require.NoError(t, err)

	// 1. Build and publish the first run
	first, err := coll.Build(ctx, refs(testutil.Cartesian(testutil.ScenarioValues(10)...)))
	require.NoError(t, err)

	pub := indexfile.NewPublisher[model.Ref](blobstore.NewLocalStore(dir), "temperature",
		indexfile.WithOptions(indexfile.Options{Compression: indexfile.CompressionLZ4}))
	v, err := pub.Publish(ctx, first)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)

	// 2. Reopen and extend
	pub = indexfile.NewPublisher[model.Ref](blobstore.NewLocalStore(dir), "temperature")
	prev, v, err := pub.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)

	next, stats, err := coll.Update(ctx, prev, refs(testutil.Cartesian(testutil.ScenarioValues(11)...)))
	require.NoError(t, err)
	assert.Equal(t, 200, stats.Carried)
	assert.Equal(t, 42, stats.Dropped)
	assert.Equal(t, []int{1, 2}, stats.Extended)
	assert.InDelta(t, 0.826446, next.Density(), 1e-6)

	v, err = pub.Publish(ctx, next)
	require.NoError(t, err)
	require.Equal(t, uint64(2), v)

	// 3. Flat indexes published in version 1 still address the same cells.
	reloaded, err := pub.Load(ctx, 2)
	require.NoError(t, err)
	for flat := range prev.TotalSize() {
		want, ok := prev.ContentAt(flat)
		require.True(t, ok)
		tu := prev.TupleAt(flat)
		got, ok := reloaded.Lookup(tu)
		require.True(t, ok, "tuple %s", tu)
		assert.Equal(t, want, got)
		f, ok := reloaded.FlatIndex(tu)
		require.True(t, ok)
		assert.Equal(t, prev.Indexes(flat), reloaded.Indexes(f))
	}
}

// TestE2E_Partitions builds partitions concurrently and publishes each under
// its own name.
func TestE2E_Partitions(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	coll, err := gridex.NewCollection[model.Ref]("temperature", specs)
	require.NoError(t, err)

	parts := map[string]gridex.Scanner[model.Ref]{}
	for i, name := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		tuples := testutil.NewRNG(int64(i)).Sample(testutil.Cartesian(testutil.ScenarioValues(i+3)...), 0.7)
		parts[name] = refs(tuples)
	}

	grids, err := gridex.BuildPartitions(ctx, coll, parts)
	require.NoError(t, err)

	for name, g := range grids {
		pub := indexfile.NewPublisher[model.Ref](store, "temperature/"+name)
		_, err := pub.Publish(ctx, g)
		require.NoError(t, err)

		loaded, _, err := pub.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, g.Sizes(), loaded.Sizes())
		assert.Equal(t, g.Track(), loaded.Track())
	}

	names, err := store.List(ctx, "temperature/")
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

// TestE2E_ReadersDuringRefresh checks that readers only ever see complete
// grids while refreshes publish new ones.
func TestE2E_ReadersDuringRefresh(t *testing.T) {
	ctx := context.Background()
	coll, err := gridex.NewCollection[model.Ref]("temperature", specs)
	require.NoError(t, err)

	h := gridex.NewHandle[model.Ref](nil)
	_, err = coll.Refresh(ctx, h, refs(testutil.Cartesian(testutil.ScenarioValues(2)...)))
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		stop  atomic.Bool
		reads atomic.Int64
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				g := h.Load()
				checkConsistent(t, g)
				reads.Add(1)
			}
		}()
	}

	for n := 3; n <= 12; n++ {
		_, err := coll.Refresh(ctx, h, refs(testutil.Cartesian(testutil.ScenarioValues(n)...)))
		require.NoError(t, err)
	}
	stop.Store(true)
	wg.Wait()

	assert.Equal(t, uint64(11), h.Version())
	assert.Positive(t, reads.Load())
}

func checkConsistent(t *testing.T, g *grid.ND[model.Ref]) {
	total := 1
	for _, s := range g.Sizes() {
		total *= s
	}
	if total != g.TotalSize() || len(g.Track()) != total || len(g.Content()) != g.Populated() {
		t.Errorf("inconsistent grid %v", g.Sizes())
	}
}
