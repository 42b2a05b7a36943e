package indexfile

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hupe1980/gridex/blobstore"
	"github.com/hupe1980/gridex/grid"
	"github.com/hupe1980/gridex/resource"
)

// Publisher writes successive versions of a collection's grid to a store as
// "<collection>/<version>.gdx" and reads them back.
//
// Versions start at 1 and only grow. Without a VersionLog the next version
// is derived from the files already in the store, which is safe for a single
// writer. Concurrent writers must share a VersionLog; a writer that loses the
// race for a version gets blobstore.ErrConflict and can retry.
type Publisher[T any] struct {
	store      blobstore.Store
	collection string
	opts       publisherOptions
}

type publisherOptions struct {
	file     Options
	versions blobstore.VersionLog
	rc       *resource.Controller
}

// PublisherOption configures a Publisher.
type PublisherOption func(*publisherOptions)

// WithOptions sets the encoding options of published files.
func WithOptions(o Options) PublisherOption {
	return func(po *publisherOptions) {
		po.file = o
	}
}

// WithVersionLog arbitrates version numbers between concurrent publishers.
func WithVersionLog(l blobstore.VersionLog) PublisherOption {
	return func(po *publisherOptions) {
		po.versions = l
	}
}

// WithResourceController throttles writes to the controller's IO limit.
func WithResourceController(rc *resource.Controller) PublisherOption {
	return func(po *publisherOptions) {
		po.rc = rc
	}
}

// NewPublisher creates a publisher for collection on store.
func NewPublisher[T any](store blobstore.Store, collection string, optFns ...PublisherOption) *Publisher[T] {
	var o publisherOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return &Publisher[T]{
		store:      store,
		collection: collection,
		opts:       o,
	}
}

// Name returns the blob name of version.
func (p *Publisher[T]) Name(version uint64) string {
	return path.Join(p.collection, strconv.FormatUint(version, 10)+Extension)
}

// Publish encodes g and stores it as the next version, which it returns.
func (p *Publisher[T]) Publish(ctx context.Context, g *grid.ND[T]) (uint64, error) {
	var buf bytes.Buffer
	if err := Encode(p.opts.rc.Writer(ctx, &buf), g, p.opts.file); err != nil {
		return 0, err
	}

	version, err := p.nextVersion(ctx)
	if err != nil {
		return 0, err
	}
	if p.opts.versions != nil {
		if err := p.opts.versions.Commit(ctx, p.collection, version); err != nil {
			return 0, fmt.Errorf("indexfile: claim %s: %w", p.Name(version), err)
		}
	}

	if err := p.store.Put(ctx, p.Name(version), buf.Bytes()); err != nil {
		return 0, err
	}
	return version, nil
}

func (p *Publisher[T]) nextVersion(ctx context.Context) (uint64, error) {
	versions, err := p.Versions(ctx)
	if err != nil {
		return 0, err
	}
	var latest uint64
	if n := len(versions); n > 0 {
		latest = versions[n-1]
	}
	if p.opts.versions != nil {
		logged, err := p.opts.versions.Latest(ctx, p.collection)
		if err != nil {
			return 0, err
		}
		latest = max(latest, logged)
	}
	return latest + 1, nil
}

// Versions returns the stored versions in ascending order. Blobs under the
// collection that are not index files are ignored.
func (p *Publisher[T]) Versions(ctx context.Context) ([]uint64, error) {
	names, err := p.store.List(ctx, p.collection+"/")
	if err != nil {
		return nil, err
	}

	var versions []uint64
	for _, name := range names {
		base, ok := strings.CutSuffix(path.Base(name), Extension)
		if !ok || path.Dir(name) != path.Clean(p.collection) {
			continue
		}
		v, err := strconv.ParseUint(base, 10, 64)
		if err != nil || v == 0 {
			continue
		}
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions, nil
}

// Load reads one version.
func (p *Publisher[T]) Load(ctx context.Context, version uint64) (*grid.ND[T], error) {
	data, err := p.store.Get(ctx, p.Name(version))
	if err != nil {
		return nil, err
	}
	if err := p.opts.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return Unmarshal[T](data, p.opts.file)
}

// Latest reads the newest stored version. It fails with blobstore.ErrNotFound
// when nothing was published.
func (p *Publisher[T]) Latest(ctx context.Context) (*grid.ND[T], uint64, error) {
	versions, err := p.Versions(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(versions) == 0 {
		return nil, 0, fmt.Errorf("indexfile: no versions of %q: %w", p.collection, blobstore.ErrNotFound)
	}

	version := versions[len(versions)-1]
	g, err := p.Load(ctx, version)
	if err != nil {
		return nil, 0, err
	}
	return g, version, nil
}

// Prune deletes all but the newest keep versions and returns how many it
// deleted. The newest version is always kept, so versions are never reused.
func (p *Publisher[T]) Prune(ctx context.Context, keep int) (int, error) {
	versions, err := p.Versions(ctx)
	if err != nil {
		return 0, err
	}
	// The newest version is the high-water mark nextVersion reads.
	keep = max(keep, 1)
	if len(versions) <= keep {
		return 0, nil
	}

	var result *multierror.Error
	deleted := 0
	for _, v := range versions[:len(versions)-keep] {
		if err := p.store.Delete(ctx, p.Name(v)); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		deleted++
	}
	return deleted, result.ErrorOrNil()
}
