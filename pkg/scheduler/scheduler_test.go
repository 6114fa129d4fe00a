package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/gotestr/pkg/plan"
	"github.com/giantswarm/gotestr/pkg/registry"
	"github.com/giantswarm/gotestr/pkg/report"
)

type fakeReporter struct {
	mu        sync.Mutex
	started   []string
	repeats   []string
	finished  []report.Result
	warnings  []string
	suiteDone bool
}

func (f *fakeReporter) StartSuite(tests []report.TestInfo) {}
func (f *fakeReporter) StartRunningTest(test report.TestInfo, idx, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, test.FullyQualifiedName)
}
func (f *fakeReporter) RepeatRunningTest(test report.TestInfo, idx, count, attempt, maxAttempts int, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repeats = append(f.repeats, test.FullyQualifiedName)
}
func (f *fakeReporter) FinishedRunningTest(test report.TestInfo, idx, count int, result report.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, result)
}
func (f *fakeReporter) FinishedSuite(tests []report.TestInfo, outcomes []report.TestOutcome, execTime time.Duration) {
	f.suiteDone = true
}
func (f *fakeReporter) TestList(tests []report.TestInfo) {}
func (f *fakeReporter) Warning(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings = append(f.warnings, message)
}

func testDescriptor(name string, fn registry.TestFunc) *registry.TestDescriptor {
	return &registry.TestDescriptor{
		FullyQualifiedName: "suite::" + name,
		ModulePath:          "suite",
		Name:                name,
		Func:                fn,
	}
}

func newRunner(t *testing.T, async bool, descs ...*registry.TestDescriptor) (*Runner, *fakeReporter) {
	t.Helper()
	p := plan.Build(async, descs, nil, nil)
	reporter := &fakeReporter{}
	tests := make([]report.TestInfo, len(descs))
	for i, d := range descs {
		tests[i] = report.TestInfoFrom(d)
	}
	return &Runner{
		Plan:     p,
		Config:   Config{Async: async, ThreadCount: 2, NoCapture: true},
		Reporter: reporter,
		Tests:    tests,
	}, reporter
}

func TestRunnerSyncPassAndFail(t *testing.T) {
	pass := testDescriptor("pass", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		return registry.Outcome{}
	})
	fail := testDescriptor("fail", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		return registry.Outcome{Failed: true, Panic: "boom"}
	})

	r, _ := newRunner(t, false, pass, fail)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunnerCatchesPanic(t *testing.T) {
	boom := testDescriptor("boom", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		panic("kaboom")
	})

	r, _ := newRunner(t, false, boom)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunnerShouldPanicPolicy(t *testing.T) {
	panics := testDescriptor("panics", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		panic("expected failure: bad input")
	})
	panics.ShouldPanic = registry.ShouldPanic("bad input")

	doesNotPanic := testDescriptor("calm", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		return registry.Outcome{}
	})
	doesNotPanic.ShouldPanic = registry.ShouldPanic("")

	r, _ := newRunner(t, false, panics, doesNotPanic)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunnerRetryKnownFlakyEventuallyPasses(t *testing.T) {
	var calls int
	flaky := testDescriptor("flaky", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		calls++
		if calls < 3 {
			return registry.Outcome{Failed: true, Panic: "not yet"}
		}
		return registry.Outcome{}
	})
	flaky.Flakiness = registry.RetryKnownFlaky(5)

	r, reporter := newRunner(t, false, flaky)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passed)
	assert.Len(t, reporter.repeats, 2)
}

func TestRunnerProveNonFlakyFailsOnFirstFailure(t *testing.T) {
	var calls int
	flaky := testDescriptor("unstable", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		calls++
		if calls == 2 {
			return registry.Outcome{Failed: true}
		}
		return registry.Outcome{}
	})
	flaky.Flakiness = registry.ProveNonFlaky(5)

	r, _ := newRunner(t, false, flaky)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, calls)
}

func TestResolveCapturePolicyForcesWorkersWhenParallelCaptureRequested(t *testing.T) {
	policy := resolveCapturePolicy(Config{}, 4, false)
	assert.True(t, policy.capture)
	assert.True(t, policy.useWorkers)
}

func TestResolveCapturePolicyFallsBackWithSharedDeps(t *testing.T) {
	policy := resolveCapturePolicy(Config{}, 4, true)
	assert.True(t, policy.forcedSingleThread)
}

func TestResolveCapturePolicyNoCaptureWins(t *testing.T) {
	policy := resolveCapturePolicy(Config{NoCapture: true}, 4, false)
	assert.False(t, policy.capture)
	assert.False(t, policy.useWorkers)
}

func TestRunnerAsyncModeRunsAllTests(t *testing.T) {
	mk := func(name string) *registry.TestDescriptor {
		return testDescriptor(name, func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
			return registry.Outcome{}
		})
	}
	descs := []*registry.TestDescriptor{mk("a"), mk("b"), mk("c")}
	r, _ := newRunner(t, true, descs...)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Passed)
}

func TestRunnerPropagatesAsyncDependencyErrorInSyncRuntime(t *testing.T) {
	deps := []*registry.DependencyDescriptor{{
		Name:       "Conn",
		ModulePath: "suite",
		Constructor: registry.DependencyConstructor{
			Async: true,
			Build: func(ctx context.Context, view registry.DependencyView) (any, error) { return 1, nil },
		},
	}}
	needsDep := testDescriptor("needs_dep", func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
		return registry.Outcome{}
	})

	p := plan.Build(false, []*registry.TestDescriptor{needsDep}, deps, nil)
	reporter := &fakeReporter{}
	r := &Runner{
		Plan:     p,
		Config:   Config{ThreadCount: 1, NoCapture: true},
		Reporter: reporter,
		Tests:    []report.TestInfo{report.TestInfoFrom(needsDep)},
	}

	_, err := r.Run(context.Background())
	require.Error(t, err)
	var asyncErr *plan.ErrAsyncInSyncRuntime
	assert.True(t, errors.As(err, &asyncErr))
}
