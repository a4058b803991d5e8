package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BulkResult represents the outcome of a single bulk operation
type BulkResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	err     error
}

// runBulkOperation executes operation for every id with at most concurrency
// calls in flight. Results keep the order of ids; ids never started because
// ctx ended are reported as failed with the context error.
func runBulkOperation(
	ctx context.Context,
	ids []string,
	concurrency int64,
	progress io.Writer,
	operation func(ctx context.Context, id string) error,
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult, len(ids))
	var (
		mu   sync.Mutex
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		results[i] = BulkResult{ID: id}
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i].setError(err)
				return nil
			}
			defer sem.Release(1)

			if err := operation(ctx, id); err != nil {
				results[i].setError(err)
			} else {
				results[i].Success = true
			}

			if progress != nil {
				mu.Lock()
				done++
				_, _ = fmt.Fprintf(progress, "\rProcessed %d/%d", done, len(ids))
				mu.Unlock()
			}
			return nil // individual failures never cancel the others
		})
	}
	_ = g.Wait()

	if progress != nil && len(ids) > 0 {
		_, _ = fmt.Fprintln(progress)
	}
	return results
}

func (r *BulkResult) setError(err error) {
	r.err = err
	r.Error = err.Error()
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}

// firstError returns the first failure, in id order.
func firstError(results []BulkResult) error {
	for _, r := range results {
		if !r.Success && r.err != nil {
			return r.err
		}
	}
	return nil
}
