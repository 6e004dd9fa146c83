package container

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchFunc is one unit of work of a batch.
type BatchFunc func(ctx context.Context, c *Container) error

// Batch runs fns concurrently, at most WithBatchLimit at a time. The first
// error cancels the context passed to the remaining functions and is
// returned.
func (c *Container) Batch(ctx context.Context, fns ...BatchFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	if c.batchLimit > 0 {
		g.SetLimit(c.batchLimit)
	}

	for _, fn := range fns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, c)
		})
	}
	return g.Wait()
}

// FindTargetsBatch runs FindTargets for every source concurrently. Results
// are in the order of sources.
func (c *Container) FindTargetsBatch(ctx context.Context, sources []any, optFns ...QueryOption) ([][]any, error) {
	return c.findBatch(ctx, sources, func(obj any) ([]any, error) {
		return c.FindTargets(obj, optFns...)
	})
}

// FindSourcesBatch runs FindSources for every target concurrently.
func (c *Container) FindSourcesBatch(ctx context.Context, targets []any, optFns ...QueryOption) ([][]any, error) {
	return c.findBatch(ctx, targets, func(obj any) ([]any, error) {
		return c.FindSources(obj, optFns...)
	})
}

func (c *Container) findBatch(ctx context.Context, objs []any, find func(any) ([]any, error)) ([][]any, error) {
	out := make([][]any, len(objs))
	fns := make([]BatchFunc, len(objs))
	for i, obj := range objs {
		fns[i] = func(context.Context, *Container) error {
			res, err := find(obj)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		}
	}
	if err := c.Batch(ctx, fns...); err != nil {
		return nil, err
	}
	return out, nil
}
