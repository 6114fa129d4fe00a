package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/giantswarm/gotestr/pkg/capture"
	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/registry"
	"github.com/giantswarm/gotestr/pkg/report"
	"github.com/giantswarm/gotestr/pkg/stats"
)

// runInProcessAttempt executes item.Test.Func exactly once, in the calling
// goroutine, applying panic recovery and should_panic interpretation
// (§4.5). It is the building block both runtimes call per attempt; the
// flakiness loop in flaky.go decides how many times to call it.
func runInProcessAttempt(ctx context.Context, item *plan.Item, captureOutput bool) report.Result {
	start := time.Now()

	var sess *capture.Session
	if captureOutput {
		s, err := capture.Start()
		if err == nil {
			sess = s
		}
	}

	outcome, panicked, panicMsg := invoke(ctx, item)

	var lines []report.CapturedLine
	if sess != nil {
		for _, l := range sess.Stop() {
			lines = append(lines, report.CapturedLine{Ordinal: l.Ordinal, Stderr: l.Stderr, Text: l.Text})
		}
	}

	execTime := time.Since(start)
	result := report.Result{ExecTime: execTime, Captured: lines}

	failed := outcome.Failed || panicked
	message := outcome.Panic
	if panicked {
		message = panicMsg
	}

	if item.Test.ShouldPanic.Expected {
		applyShouldPanic(&result, item.Test.ShouldPanic, panicked, message)
		return result
	}

	switch {
	case item.Test.Ignored:
		result.Kind = report.ResultIgnored
	case failed:
		result.Kind = report.ResultFailed
		result.PanicMessage = message
	case outcome.Summary != nil:
		result.Kind = report.ResultBenchmarked
		result.MBPerSec = outcome.Summary.MBPerSec
		result.Summary = convertBenchSummary(outcome.Summary)
	default:
		result.Kind = report.ResultPassed
	}
	return result
}

// applyShouldPanic implements §4.5's should_panic interpretation: a clean
// pass is a failure, a panic is a pass unless a required substring is
// missing from the message.
func applyShouldPanic(result *report.Result, policy registry.ShouldPanicPolicy, panicked bool, message string) {
	if !panicked {
		result.Kind = report.ResultFailed
		result.PanicMessage = "test did not panic as required by should_panic"
		return
	}
	if policy.Message != "" && !strings.Contains(message, policy.Message) {
		result.Kind = report.ResultFailed
		result.PanicMessage = fmt.Sprintf("panic message %q does not contain required substring %q", message, policy.Message)
		return
	}
	result.Kind = report.ResultPassed
}

// invoke runs the test function with panic recovery, mirroring sync.rs's
// catch_unwind-based run_sync_test_function. It returns the normal outcome
// when no panic occurred, or a zero outcome plus the recovered payload
// otherwise.
func invoke(ctx context.Context, item *plan.Item) (outcome registry.Outcome, panicked bool, panicMsg string) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			panicMsg = fmt.Sprint(r)
		}
	}()
	outcome = item.Test.Func(ctx, item.Deps)
	return outcome, false, ""
}

// convertBenchSummary adapts a test function's already-computed
// registry.BenchSummary (produced by a pkg/bench.Bencher the test body
// drives itself) into the stats.Summary shape report.Result carries.
func convertBenchSummary(b *registry.BenchSummary) *stats.Summary {
	return &stats.Summary{
		Median:       float64(b.Median.Nanoseconds()),
		MedianAbsDev: float64(b.MedianAbs.Nanoseconds()),
		Min:          float64(b.Min.Nanoseconds()),
		Max:          float64(b.Max.Nanoseconds()),
	}
}
