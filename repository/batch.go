package repository

import (
	"context"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/executor"
)

// InsertBatch inserts the records concurrently and returns one result per
// record, holding its generated key. A failing record does not stop the
// others; the returned error joins the failures of all records.
func (r *Repository[E]) InsertBatch(ctx context.Context, recs []*E) ([]executor.Result[int64], error) {
	return r.batch(ctx, len(recs), func(ctx context.Context, i int) (int64, error) {
		return r.insert(ctx, recs[i]).Get()
	})
}

// UpdateBatch updates the records concurrently and returns the affected row
// count of each.
func (r *Repository[E]) UpdateBatch(ctx context.Context, recs []*E) ([]executor.Result[int64], error) {
	return r.batch(ctx, len(recs), func(ctx context.Context, i int) (int64, error) {
		return r.update(ctx, recs[i]).Get()
	})
}

// DeleteBatch deletes the rows with the given primary keys concurrently.
func (r *Repository[E]) DeleteBatch(ctx context.Context, ids []any) ([]executor.Result[int64], error) {
	return r.batch(ctx, len(ids), func(ctx context.Context, i int) (int64, error) {
		return r.delete(ctx, ids[i]).Get()
	})
}

func (r *Repository[E]) batch(ctx context.Context, n int, fn func(context.Context, int) (int64, error)) ([]executor.Result[int64], error) {
	results, err := executor.Batch(ctx, r.exec.BatchConcurrency(), n, fn).Await(ctx)
	if err != nil {
		return nil, err
	}
	return results, querykit.NewAggregateError(executor.Errors(results)...)
}
