package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch runs fn for each of the n items concurrently, at most limit at a
// time (limit < 1 means no limit), and collects one result per item. A
// failing item never cancels the others.
func Batch[T any](ctx context.Context, limit, n int, fn func(ctx context.Context, i int) (T, error)) *Future[[]Result[T]] {
	return Go(ctx, func(ctx context.Context) ([]Result[T], error) {
		results := make([]Result[T], n)
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i := range n {
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						results[i].Err = fmt.Errorf("querykit: panic in batch item %d: %v", i, r)
					}
				}()
				results[i].Value, results[i].Err = fn(ctx, i)
				return nil
			})
		}
		_ = g.Wait()
		return results, nil
	})
}
