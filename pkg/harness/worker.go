package harness

import (
	"context"

	"github.com/giantswarm/gotestr/pkg/filter"
	"github.com/giantswarm/gotestr/pkg/ipc"
	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/registry"
	"github.com/giantswarm/gotestr/pkg/scheduler"
)

// BuildWorkerPlan reruns exactly the materialize/snapshot/filter/plan steps
// Run does, stopping short of scheduling (§4.7 "a worker bootstraps
// identically to the primary"). A spawned worker calls this against the
// same registry and the same Options the primary resolved from its CLI
// flags, so the two processes agree on plan shape without exchanging it
// over the wire.
func BuildWorkerPlan(ctx context.Context, reg *registry.Registry, opts Options) (*plan.Plan, error) {
	if err := reg.MaterializeGenerators(ctx); err != nil {
		return nil, &RegistrationError{Cause: err}
	}

	snap := reg.Snapshot()
	if err := snap.Validate(); err != nil {
		return nil, &RegistrationError{Cause: err}
	}

	mode := filter.ModeTest
	if opts.Bench {
		mode = filter.ModeBench
	}
	criteria := filter.Criteria{
		IncludeIgnored:     opts.IncludeIgnored,
		IgnoredOnly:        opts.IgnoredOnly,
		ExcludeShouldPanic: opts.ExcludeShouldPanic,
		Mode:               mode,
		Filter:             opts.Filter,
		Exact:              opts.Exact,
		Skip:               opts.Skip,
		Shuffle:            opts.Shuffle,
		ShuffleSeed:        opts.ShuffleSeed,
	}
	selected := filter.Apply(snap.Tests, snap.Properties, criteria)

	return plan.Build(opts.Async, selected.Tests, snap.Dependencies, snap.Properties), nil
}

// NewWorkerExecutor wraps p as an ipc.Executor for ipc.RunWorker.
func NewWorkerExecutor(p *plan.Plan) ipc.Executor {
	return &scheduler.WorkerExecutor{Plan: p}
}
