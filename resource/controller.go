// Package resource bounds the work a collection-serving process does
// around the indexing engine: how many collection builds run at once, how
// many grid cells they may hold in memory together, and how fast published
// index files are written out.
package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrOverBudget is returned when a single request exceeds the whole cell budget.
var ErrOverBudget = errors.New("resource: request exceeds cell budget")

// Config holds resource limits.
type Config struct {
	// MaxConcurrentBuilds is the maximum number of collection builds that
	// run at the same time. If 0, defaults to 1.
	MaxConcurrentBuilds int64

	// CellBudget is the hard limit on grid cells held by in-flight builds.
	// If 0, no hard limit is enforced (only tracking).
	CellBudget int64

	// IOLimitBytesPerSec is the maximum throughput for writing index files.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages build concurrency, cell memory and publication IO.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	buildSem *semaphore.Weighted

	cellSem  *semaphore.Weighted // nil if unlimited
	cellUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentBuilds <= 0 {
		cfg.MaxConcurrentBuilds = 1
	}

	c := &Controller{
		cfg:      cfg,
		buildSem: semaphore.NewWeighted(cfg.MaxConcurrentBuilds),
	}

	if cfg.CellBudget > 0 {
		c.cellSem = semaphore.NewWeighted(cfg.CellBudget)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireBuild reserves a build slot, blocking until one is free or ctx is
// canceled.
func (c *Controller) AcquireBuild(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.buildSem.Acquire(ctx, 1)
}

// ReleaseBuild releases a build slot.
func (c *Controller) ReleaseBuild() {
	if c == nil {
		return
	}
	c.buildSem.Release(1)
}

// AcquireCells reserves room for n grid cells. With a budget configured it
// blocks until the cells fit or ctx is canceled. A request larger than the
// whole budget fails with ErrOverBudget.
func (c *Controller) AcquireCells(ctx context.Context, n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.cellSem != nil {
		if n > c.cfg.CellBudget {
			return ErrOverBudget
		}
		if err := c.cellSem.Acquire(ctx, n); err != nil {
			return err
		}
	}
	c.cellUsed.Add(n)
	return nil
}

// ReleaseCells releases n reserved cells.
func (c *Controller) ReleaseCells(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.cellSem != nil {
		c.cellSem.Release(n)
	}
	c.cellUsed.Add(-n)
}

// CellUsage returns the number of cells currently reserved.
func (c *Controller) CellUsage() int64 {
	if c == nil {
		return 0
	}
	return c.cellUsed.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	for bytes > 0 {
		n := min(bytes, c.ioLimiter.Burst())
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
