package gridex

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/hupe1980/gridex/grid"
	"golang.org/x/sync/errgroup"
)

// BuildPartitions builds one grid per partition concurrently. Partitions are
// independent: each gets its own axes derived from its own records.
//
// Fan-out is bounded by the collection's resource controller. The first
// failure cancels the remaining builds and is returned as *PartitionError.
func BuildPartitions[T any](ctx context.Context, coll *Collection[T], parts map[string]Scanner[T]) (map[string]*grid.ND[T], error) {
	g, gctx := errgroup.WithContext(ctx)
	if rc := coll.opts.controller; rc != nil {
		g.SetLimit(int(rc.Config().MaxConcurrentBuilds))
	}

	var (
		mu  sync.Mutex
		out = make(map[string]*grid.ND[T], len(parts))
	)

	for _, name := range slices.Sorted(maps.Keys(parts)) {
		scanner := parts[name]
		g.Go(func() error {
			nd, err := coll.buildLogged(gctx, scanner, coll.log.WithPartition(name))
			if err != nil {
				return &PartitionError{Partition: name, cause: err}
			}
			mu.Lock()
			out[name] = nd
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
