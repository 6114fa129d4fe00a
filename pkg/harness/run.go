package harness

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/giantswarm/gotestr/pkg/filter"
	"github.com/giantswarm/gotestr/pkg/gtlog"
	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/registry"
	"github.com/giantswarm/gotestr/pkg/report"
	"github.com/giantswarm/gotestr/pkg/scheduler"
)

// Run filters reg's snapshot, builds a plan, drives the scheduler to
// completion, and reports every lifecycle event, mirroring test-r-core's
// tokio.rs/sync.rs test_runner functions. It returns the resolved suite
// summary; the caller (cmd's runRoot) maps SuiteSummary.Failed > 0 to exit
// code 101 per §6.
func Run(ctx context.Context, reg *registry.Registry, opts Options) (report.SuiteSummary, error) {
	if err := reg.MaterializeGenerators(ctx); err != nil {
		return report.SuiteSummary{}, &RegistrationError{Cause: err}
	}

	snap := reg.Snapshot()
	if err := snap.Validate(); err != nil {
		return report.SuiteSummary{}, &RegistrationError{Cause: err}
	}

	if opts.SpawnWorkers && opts.WorkerBinaryPath == "" {
		return report.SuiteSummary{}, &WorkerError{Cause: fmt.Errorf("worker delegation requested with no worker binary path resolved")}
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

	reporter, err := newReporter(opts)
	if err != nil {
		return report.SuiteSummary{}, err
	}

	if selected.Shuffled && opts.ShuffleSeed == nil {
		reporter.Warning(fmt.Sprintf("running with shuffle seed %d (pass --shuffle-seed %d to reproduce this order)", selected.UsedSeed, selected.UsedSeed))
		gtlog.Info("harness", "shuffled %d tests with generated seed %d", len(selected.Tests), selected.UsedSeed)
	}

	infos := make([]report.TestInfo, 0, len(selected.Tests))
	for _, t := range selected.Tests {
		infos = append(infos, report.TestInfoFrom(t))
	}

	if opts.List {
		reporter.TestList(infos)
		return report.SuiteSummary{}, nil
	}

	p := plan.Build(opts.Async, selected.Tests, snap.Dependencies, snap.Properties)

	runner := &scheduler.Runner{
		Plan:     p,
		Reporter: reporter,
		Tests:    infos,
		Config: scheduler.Config{
			Async:            opts.Async,
			ThreadCount:      opts.ThreadCount,
			NoCapture:        opts.NoCapture,
			SpawnWorkers:     opts.SpawnWorkers,
			WorkerBinaryPath: opts.WorkerBinaryPath,
			WorkerArgs:       opts.WorkerArgs,
			DefaultTimeout:   opts.DefaultTimeout,
		},
	}

	gtlog.Info("harness", "running %d tests (async=%t)", len(infos), opts.Async)
	return runner.Run(ctx)
}

func newReporter(opts Options) (report.Reporter, error) {
	w := opts.Stdout
	if w == nil {
		w = io.Discard
	}
	switch opts.Format {
	case "", FormatPretty:
		return report.NewPretty(w, opts.ShowOutput, opts.ReportTime, opts.UnitTh, opts.IntegTh), nil
	case FormatTerse:
		return report.NewTerse(w), nil
	case FormatJSON:
		return report.NewJSON(w), nil
	case FormatJUnit:
		return report.NewJUnit(w), nil
	case FormatCTRF:
		return report.NewCTRF(w, opts.ShowOutput), nil
	default:
		if path, ok := strings.CutPrefix(string(opts.Format), "template:"); ok {
			if path == "" {
				return nil, &ArgumentError{Cause: fmt.Errorf("--format template: requires a path, e.g. --format template:report.tmpl")}
			}
			return report.NewTemplate(w, path), nil
		}
		return nil, &ArgumentError{Cause: fmt.Errorf("unknown --format %q", opts.Format)}
	}
}
