package scheduler

import (
	"context"

	"github.com/giantswarm/gotestr/pkg/ipc"
	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/report"
	"github.com/giantswarm/gotestr/pkg/stats"
)

// WorkerExecutor implements ipc.Executor for a spawned worker process: it
// resolves the single named test against its own bootstrapped Plan (built
// identically to the primary's, per §4.7 "performs its own filter/plan
// bootstrapping exactly like the primary") and runs it in-process, without
// output capture — the worker's stdout/stderr are the test's raw streams,
// which the primary reads directly off the child (§4.7 "the worker itself
// does not capture").
type WorkerExecutor struct {
	Plan *plan.Plan
}

func (w *WorkerExecutor) Execute(cmd ipc.Command) ipc.SerializableResult {
	ctx := context.Background()

	item, err := w.Plan.Resolve(ctx, cmd.ModulePath, cmd.Name)
	if err != nil {
		return ipc.SerializableResult{Kind: ipc.ResultFailed, PanicMessage: err.Error()}
	}
	defer item.Release()

	result := runWithFlakiness(ctx, item, func(ctx context.Context, item *plan.Item) report.Result {
		return runInProcessAttempt(ctx, item, false)
	}, nil)

	return toWireResult(result)
}

// toWireResult converts a resolved report.Result into the IPC wire form
// (§4.7 "result is the serialized outcome"). Captured output is never
// attached here; it travels over the primary's own pipe read of the
// worker's stdout/stderr instead.
func toWireResult(r report.Result) ipc.SerializableResult {
	out := ipc.SerializableResult{ExecTime: r.ExecTime, PanicMessage: r.PanicMessage}
	switch r.Kind {
	case report.ResultPassed:
		out.Kind = ipc.ResultPassed
	case report.ResultFailed:
		out.Kind = ipc.ResultFailed
	case report.ResultIgnored:
		out.Kind = ipc.ResultIgnored
	case report.ResultBenchmarked:
		out.Kind = ipc.ResultBenchmarked
		out.MBPerSec = r.MBPerSec
		if r.Summary != nil {
			out.MedianNanos = r.Summary.Median
			out.MedianAbsDev = r.Summary.MedianAbsDev
			out.MinNanos = r.Summary.Min
			out.MaxNanos = r.Summary.Max
		}
	}
	return out
}

// fromWireResult is the inverse, used by the primary when a test ran
// through a worker.
func fromWireResult(r ipc.SerializableResult, captured []report.CapturedLine) report.Result {
	out := report.Result{ExecTime: r.ExecTime, PanicMessage: r.PanicMessage, Captured: captured}
	switch r.Kind {
	case ipc.ResultPassed:
		out.Kind = report.ResultPassed
	case ipc.ResultFailed:
		out.Kind = report.ResultFailed
	case ipc.ResultIgnored:
		out.Kind = report.ResultIgnored
	case ipc.ResultBenchmarked:
		out.Kind = report.ResultBenchmarked
		out.MBPerSec = r.MBPerSec
		out.Summary = &stats.Summary{
			Median:       r.MedianNanos,
			MedianAbsDev: r.MedianAbsDev,
			Min:          r.MinNanos,
			Max:          r.MaxNanos,
		}
	}
	return out
}
