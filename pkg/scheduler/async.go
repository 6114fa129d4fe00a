package scheduler

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/report"
)

// runAsync drives p to completion with a cooperative goroutine pool bounded
// to threads, dispatching non-Async tests onto a separate, more generously
// bounded pool so they never starve the cooperative workers (§4.5 "Sync
// tests returned in async mode are dispatched onto a blocking-task pool").
func (r *Runner) runAsync(ctx context.Context, p *plan.Plan, threads int, dispatch func(context.Context, *plan.Item) report.TestOutcome) ([]report.TestOutcome, error) {
	asyncSem := semaphore.NewWeighted(int64(threads))
	blockingSem := semaphore.NewWeighted(int64(threads * 4))

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var outcomes []report.TestOutcome

	for {
		item, ok, err := p.PickNext(gctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			if p.IsEmpty() {
				break
			}
			// Nothing pickable this instant — a sequential region is
			// locked elsewhere (§4.4 step 2). Wait for that lock to free
			// rather than treating this as plan exhaustion.
			if err := p.WaitForChange(gctx); err != nil {
				return outcomes, err
			}
			continue
		}

		item := item
		sem := blockingSem
		if item.Test.Async {
			sem = asyncSem
		}

		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				item.Release()
				return err
			}
			defer sem.Release(1)
			defer item.Release()

			outcome := dispatch(gctx, item)

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
