package scheduler

import (
	"context"
	"sync"

	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/report"
)

// runSync drives p with a fixed pool of worker goroutines standing in for
// the source project's OS-thread pool (§4.5 "Sync mode. A pool of OS
// threads of the chosen size each pulls from pick_next"). Timeouts are not
// honored here, matching the spec's "Timeouts are not supported in sync
// mode".
func (r *Runner) runSync(ctx context.Context, p *plan.Plan, threads int, dispatch func(context.Context, *plan.Item) report.TestOutcome) ([]report.TestOutcome, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var outcomes []report.TestOutcome
	var firstErr error

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok, err := p.PickNext(ctx)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				if !ok {
					if p.IsEmpty() {
						return
					}
					// A sequential region is locked elsewhere; block until
					// it frees instead of exiting this worker early (§4.4
					// step 2, §4.5 "blocks until free in sync mode").
					if err := p.WaitForChange(ctx); err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
						return
					}
					continue
				}

				outcome := dispatch(ctx, item)
				item.Release()

				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return outcomes, firstErr
}
