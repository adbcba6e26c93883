package utils

import (
	"context"
	"runtime"
	"sync"
)

// DefaultConcurrency bounds ParallelMap when no limit is given.
func DefaultConcurrency() int {
	return runtime.GOMAXPROCS(0)
}

// ParallelMap applies fn to every item with at most limit calls in flight
// and returns the results in input order. The first error (by input index)
// is returned. Panics in fn are recovered and reported as PanicError.
func ParallelMap[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultConcurrency()
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	semaphore := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(index int, item T) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				errs[index] = err
			})

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			}

			results[index], errs[index] = fn(ctx, item)
		}(i, item)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Batches splits items into consecutive chunks of at most size elements.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) <= size {
		if len(items) == 0 {
			return nil
		}
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
