package util

import (
	"context"
	"sync"
)

// ParallelMap runs fn over inputs with at most workerLimit goroutines and
// returns the results in input order. The first error cancels the remaining
// work and is returned.
func ParallelMap[T, R any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	if workerLimit <= 0 {
		workerLimit = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type task struct {
		index int
		input T
	}

	tasks := make(chan task)
	errCh := make(chan error, 1)
	results := make([]R, len(inputs))

	// workers
	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				res, err := fn(ctx, t.input)
				if err != nil {
					select {
					case errCh <- err:
						cancel() // stop others
					default:
					}
					return
				}
				results[t.index] = res
			}
		}()
	}

	// feed tasks
	go func() {
		defer close(tasks)
		for i, item := range inputs {
			// stop feeding when context canceled
			select {
			case <-ctx.Done():
				return
			case tasks <- task{index: i, input: item}:
			}
		}
	}()

	wg.Wait()
	cancel()

	select {
	case err := <-errCh:
		return nil, err
	default:
		return results, nil
	}
}
