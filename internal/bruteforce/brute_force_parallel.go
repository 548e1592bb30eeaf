package bruteforce

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// WorkItem is a single index handed to a worker.
type WorkItem struct {
	Index uint64
}

// SearchParallel distributes [0, total) over numWorkers goroutines
// (0 = runtime.NumCPU()). Indices are dispatched in ascending order; as soon
// as any worker accepts, dispatch stops and the remaining workers drain. When
// several in-flight indices are accepted, the lowest one is returned.
//
// An acceptance takes precedence over test errors: once any index is accepted
// the result is returned with a nil error, even if another worker failed
// before or after it. Workers are cancelled on acceptance, so a test that
// honors ctx may fail only because the search already succeeded.
func SearchParallel(ctx context.Context, total uint64, numWorkers int, test TestFunc) (*Result, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers == 1 {
		return Search(ctx, total, test)
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(searchCtx)
	workChan := make(chan WorkItem, numWorkers*10)

	var (
		visited atomic.Uint64
		mu      sync.Mutex
		best    *Result
	)

	// Generate work
	g.Go(func() error {
		defer close(workChan)
		for i := uint64(0); i < total; i++ {
			select {
			case <-gctx.Done():
				return nil
			case workChan <- WorkItem{Index: i}:
			}
		}
		return nil
	})

	for w := 0; w < numWorkers; w++ {
		g.Go(func() error {
			return worker(gctx, workChan, test, &visited, func(idx uint64) {
				mu.Lock()
				if best == nil || idx < best.Index {
					best = &Result{Index: idx, Found: true}
				}
				mu.Unlock()
				cancel()
			})
		})
	}

	err := g.Wait()

	res := &Result{Visited: visited.Load()}
	if best != nil {
		res.Index = best.Index
		res.Found = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	// Parent cancellation before anything was found.
	return res, ctx.Err()
}

// worker processes work items until the channel closes or the context ends.
func worker(
	ctx context.Context,
	workChan <-chan WorkItem,
	test TestFunc,
	visited *atomic.Uint64,
	onAccept func(uint64),
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case work, ok := <-workChan:
			if !ok {
				return nil
			}

			accepted, err := test(ctx, work.Index)
			visited.Add(1)
			if err != nil {
				return err
			}
			if accepted {
				onAccept(work.Index)
				return nil
			}
		}
	}
}
