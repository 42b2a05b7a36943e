package resource

import (
	"context"
	"io"
)

// Writer returns w with every write charged against the IO limit. Writes
// fail with ctx's error once it is done. Without a limit w is returned as is.
func (c *Controller) Writer(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &throttled{ctx: ctx, c: c, w: w}
}

type throttled struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

func (t *throttled) Write(p []byte) (int, error) {
	if err := t.c.AcquireIO(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.w.Write(p)
}
