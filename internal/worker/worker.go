// Package worker provides bounded parallelism for per-frame analysis.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Progress reports completed items out of a total.
type Progress struct {
	Done  int
	Total int
}

// Percent returns the completion percentage.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total) * 100
}

// ForEach calls fn for every index in [0, n) with at most workers calls in
// flight. fn must only write state owned by its index. The first error
// stops scheduling and is returned; a cancelled ctx returns ctx.Err().
// onProgress, if set, is called serially after each completed index.
func ForEach(ctx context.Context, n, workers int, fn func(i int) error, onProgress func(Progress)) error {
	sem := NewSemaphore(workers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     atomic.Int64
		failed   atomic.Bool
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		failed.Store(true)
	}

schedule:
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			setErr(err)
			break
		}
		select {
		case <-ctx.Done():
			setErr(ctx.Err())
			break schedule
		case <-sem.Chan():
		}
		if failed.Load() {
			sem.Release()
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release()

			if err := fn(i); err != nil {
				setErr(err)
				return
			}
			completed := int(done.Add(1))
			if onProgress != nil {
				mu.Lock()
				onProgress(Progress{Done: completed, Total: n})
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}
