package build

import (
	"context"
	"sync"
)

type orderedResult[R any] struct {
	Value R
	Err   error
	Ran   bool
}

// runOrdered applies fn to every item with at most concurrency calls in
// flight. Results keep the order of items. Once ctx is done no new calls
// start; their results carry ctx.Err() and Ran is false.
func runOrdered[T any, R any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) (R, error)) []orderedResult[R] {
	if len(items) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	sem := make(chan struct{}, concurrency)
	results := make([]orderedResult[R], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		select {
		case <-ctx.Done():
			results[i] = orderedResult[R]{Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}
		if err := ctx.Err(); err != nil {
			<-sem
			results[i] = orderedResult[R]{Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			v, err := fn(ctx, item)
			results[i] = orderedResult[R]{Value: v, Err: err, Ran: true}
		}(i, item)
	}
	wg.Wait()
	return results
}
