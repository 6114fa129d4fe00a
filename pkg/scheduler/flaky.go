package scheduler

import (
	"context"

	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/registry"
	"github.com/giantswarm/gotestr/pkg/report"
)

// onRepeatFunc is notified before each repeated attempt with the attempt
// number (1-based, excluding the first), the maximum number of attempts the
// policy allows, and a short human-readable reason.
type onRepeatFunc func(attempt, maxAttempts int, reason string)

// runWithFlakiness applies one item's flakiness policy on top of runAttempt
// (§4.5 "Flakiness"), reporting each repeated attempt through onRepeat
// before the final Result is returned. onRepeat may be nil.
func runWithFlakiness(ctx context.Context, item *plan.Item, runAttempt func(context.Context, *plan.Item) report.Result, onRepeat onRepeatFunc) report.Result {
	policy := item.Test.Flakiness

	switch policy.Kind {
	case registry.FlakinessRetryKnownFlaky:
		maxAttempts := policy.N + 1
		var last report.Result
		for attempt := 0; attempt <= policy.N; attempt++ {
			if attempt > 0 && onRepeat != nil {
				onRepeat(attempt+1, maxAttempts, "retry known flaky")
			}
			last = runAttempt(ctx, item)
			if last.Kind != report.ResultFailed {
				last.Retries = attempt
				return last
			}
		}
		last.Retries = policy.N
		return last

	case registry.FlakinessProveNonFlaky:
		var last report.Result
		for attempt := 0; attempt < policy.N; attempt++ {
			if attempt > 0 && onRepeat != nil {
				onRepeat(attempt+1, policy.N, "prove non-flaky")
			}
			last = runAttempt(ctx, item)
			if last.Kind == report.ResultFailed {
				last.Retries = attempt
				return last
			}
		}
		last.Retries = policy.N - 1
		return last

	default:
		return runAttempt(ctx, item)
	}
}
