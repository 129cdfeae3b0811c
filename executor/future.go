package executor

import (
	"context"
	"fmt"
)

// Future is the eventual result of an asynchronous operation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn in a new goroutine and returns its future.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("querykit: panic in async operation: %v", r)
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Ready returns a completed future.
func Ready[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: v, err: err}
	close(f.done)
	return f
}

// Done returns a channel that is closed when the future completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the future completes or ctx is done. Cancelling ctx
// stops the wait only; the operation keeps its own context.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get blocks until the future completes.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.val, f.err
}

// Then returns a future of fn applied to the result of f. fn is not called
// if f fails.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := &Future[U]{done: make(chan struct{})}
	go func() {
		defer close(next.done)
		v, err := f.Get()
		if err != nil {
			next.err = err
			return
		}
		next.val, next.err = fn(v)
	}()
	return next
}

// Result is the outcome of one item of a batch.
type Result[T any] struct {
	Value T
	Err   error
}

// All waits for all futures and returns their results in order. A failed
// future does not affect the others.
func All[T any](ctx context.Context, fs ...*Future[T]) []Result[T] {
	results := make([]Result[T], len(fs))
	for i, f := range fs {
		results[i].Value, results[i].Err = f.Await(ctx)
	}
	return results
}

// Errors returns the errors of failed results, or nil.
func Errors[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
