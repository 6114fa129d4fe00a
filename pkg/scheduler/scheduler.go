package scheduler

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/giantswarm/gotestr/pkg/ipc"
	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/report"
)

// Runner ties a Plan, a Config, and a report.Reporter together and drives
// the suite to completion (§4.5).
type Runner struct {
	Plan     *plan.Plan
	Config   Config
	Reporter report.Reporter

	// Tests is the filtered test list in the order the CLI layer resolved
	// it (filter.Result.Tests, projected to TestInfo), used only for the
	// StartSuite/TestList/FinishedSuite lifecycle events and the idx/count
	// pair each other event carries. Plan traversal order governs actual
	// execution order independently of this list.
	Tests []report.TestInfo

	idx int64
}

// Run executes every test the Plan yields and returns the resolved suite
// summary.
func (r *Runner) Run(ctx context.Context) (report.SuiteSummary, error) {
	threads := r.Config.effectiveThreadCount(runtime.NumCPU())
	policy := resolveCapturePolicy(r.Config, threads, r.Plan.HasDependencies())

	if policy.forcedSingleThread {
		r.Reporter.Warning("shared dependencies are present; parallel output capture is not possible with spawned workers, falling back to a single thread")
		threads = 1
	}

	var pool *ipc.Pool
	if policy.useWorkers {
		pool = ipc.NewPool(ipc.WorkerConfig{
			BinaryPath: r.Config.WorkerBinaryPath,
			ExtraArgs:  r.Config.WorkerArgs,
		})
		defer pool.Close()
	}

	r.Reporter.StartSuite(r.Tests)

	start := time.Now()
	dispatch := func(ctx context.Context, item *plan.Item) report.TestOutcome {
		return r.runItem(ctx, item, policy, pool)
	}

	var outcomes []report.TestOutcome
	var err error
	if r.Config.Async {
		outcomes, err = r.runAsync(ctx, r.Plan, threads, dispatch)
	} else {
		outcomes, err = r.runSync(ctx, r.Plan, threads, dispatch)
	}
	execTime := time.Since(start)

	summary := report.Summarize(len(r.Tests), outcomes, execTime)
	r.Reporter.FinishedSuite(r.Tests, outcomes, execTime)
	return summary, err
}

// runItem runs one picked item to its final Result (after flakiness and
// should_panic policy), reporting start/repeat/finish lifecycle events
// around it, and returns the TestOutcome the caller accumulates.
func (r *Runner) runItem(ctx context.Context, item *plan.Item, policy capturePolicy, pool *ipc.Pool) report.TestOutcome {
	info := report.TestInfoFrom(item.Test)
	idx := int(atomic.AddInt64(&r.idx, 1)) - 1
	count := len(r.Tests)

	r.Reporter.StartRunningTest(info, idx, count)

	timeout := item.Test.Timeout
	if timeout == 0 {
		timeout = r.Config.DefaultTimeout
	}

	onRepeat := func(attempt, maxAttempts int, reason string) {
		r.Reporter.RepeatRunningTest(info, idx, count, attempt, maxAttempts, reason)
	}

	var result report.Result
	if policy.useWorkers {
		result = runWithFlakiness(ctx, item, func(ctx context.Context, item *plan.Item) report.Result {
			return r.runViaWorker(ctx, item, pool, timeout)
		}, onRepeat)
	} else {
		runCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 && r.Config.Async {
			runCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		result = runWithFlakiness(runCtx, item, func(ctx context.Context, item *plan.Item) report.Result {
			return runInProcessAttempt(ctx, item, policy.capture)
		}, onRepeat)
		if cancel != nil {
			cancel()
		}
	}

	r.Reporter.FinishedRunningTest(info, idx, count, result)
	return report.TestOutcome{Test: info, Result: result}
}

func (r *Runner) runViaWorker(ctx context.Context, item *plan.Item, pool *ipc.Pool, timeout time.Duration) report.Result {
	cmd := ipc.Command{Name: item.Test.Name, ModulePath: item.Test.ModulePath}
	outcome := pool.Run(ctx, cmd, timeout)
	if outcome.Crashed {
		msg := "worker process terminated unexpectedly"
		if outcome.Err != nil {
			msg = outcome.Err.Error()
		}
		return report.Result{Kind: report.ResultFailed, PanicMessage: msg}
	}

	var captured []report.CapturedLine
	for _, l := range outcome.Captured {
		captured = append(captured, report.CapturedLine{Ordinal: l.Ordinal, Stderr: l.Stderr, Text: l.Text})
	}
	return fromWireResult(outcome.Response.Result, captured)
}
