package task

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"autoprefix/files"
)

func (c *Compiler) sequential(ctx context.Context, sources []files.Source) (errs error) {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := c.Compile(ctx, src); err != nil {
			c.log.Error("Unable to process file", zap.String("file", src.Path), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// parallel never returns errors to the group so that failure of one file does
// not cancel the others.
func (c *Compiler) parallel(ctx context.Context, sources []files.Source) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	g.SetLimit(c.opts.Jobs)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			break
		}
		g.Go(func() error {
			if err := c.Compile(ctx, src); err != nil {
				c.log.Error("Unable to process file", zap.String("file", src.Path), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
