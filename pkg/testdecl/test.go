package testdecl

import (
	"time"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// Test registers a test function at modulePath (the Go analogue of
// `#[test_r::test] fn name() { ... }`, with the scope that would otherwise
// come from the source module passed explicitly).
func Test(modulePath, name string, fn registry.TestFunc, opts ...registry.TestOption) {
	register(modulePath, name, fn, false, opts)
}

// Bench registers a benchmark function (`#[test_r::bench]`). The function
// is expected to drive a pkg/bench.Bencher itself and return its summary in
// the Outcome.
func Bench(modulePath, name string, fn registry.TestFunc, opts ...registry.TestOption) {
	register(modulePath, name, fn, true, opts)
}

func register(modulePath, name string, fn registry.TestFunc, isBench bool, opts []registry.TestOption) {
	d := &registry.TestDescriptor{
		FullyQualifiedName: fqn(modulePath, name),
		ModulePath:         modulePath,
		Name:               name,
		Func:               fn,
		IsBenchmark:        isBench,
	}
	for _, opt := range opts {
		opt(d)
	}
	registry.Default.RegisterTest(d)
}

func fqn(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "::" + name
}

// Ignore marks a test as ignored by default (`#[ignore]`); it only runs
// under `--include-ignored` or `--ignored`.
func Ignore() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Ignored = true }
}

// Integration marks a test as declared outside the package it exercises,
// the analogue of the source's unit/integration location inference.
func Integration() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Kind = registry.KindIntegration }
}

// WillPanic marks a test as `#[should_panic]`, optionally requiring the
// panic message to contain the given substring (empty accepts any panic).
func WillPanic(message string) registry.TestOption {
	return func(d *registry.TestDescriptor) { d.ShouldPanic = registry.ShouldPanic(message) }
}

// WithTimeout sets a per-test timeout (`#[timeout(millis)]`). Honored in
// async-mode and worker-delegated execution only; sync mode never applies
// one (§4.5).
func WithTimeout(d time.Duration) registry.TestOption {
	return func(td *registry.TestDescriptor) { td.Timeout = d }
}

// RetryKnownFlaky marks `#[flaky(n)]`: up to n additional attempts after
// the first failure.
func RetryKnownFlaky(n int) registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Flakiness = registry.RetryKnownFlaky(n) }
}

// ProveNonFlaky marks `#[non_flaky(n)]`: the test must pass n consecutive
// times.
func ProveNonFlaky(n int) registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Flakiness = registry.ProveNonFlaky(n) }
}

// WithTag attaches a tag (`#[tag(name)]`), repeatable.
func WithTag(tag string) registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Tags = append(d.Tags, tag) }
}

// Async marks the test function as the asynchronous flavor; under the
// async scheduler it runs on a cooperative worker instead of the blocking
// pool (§4.5).
func Async() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Async = true }
}

// AlwaysCapture sets CaptureAlways on the descriptor (`#[always_capture]`).
// The scheduler does not read this field, so capture follows the run-wide
// policy.
func AlwaysCapture() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Capture = registry.CaptureAlways }
}

// NeverCapture sets CaptureNever on the descriptor (`#[never_capture]`).
// The scheduler does not read this field, so capture follows the run-wide
// policy.
func NeverCapture() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.Capture = registry.CaptureNever }
}

// AlwaysReportTime sets the descriptor's ReportTime to TimeEnabled. No
// reporter reads this field; only the run-wide `--report-time` applies.
func AlwaysReportTime() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.ReportTime = registry.TimeEnabled }
}

// NeverReportTime sets the descriptor's ReportTime to TimeDisabled. No
// reporter reads this field; only the run-wide `--report-time` applies.
func NeverReportTime() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.ReportTime = registry.TimeDisabled }
}

// AlwaysEnsureTime sets the descriptor's EnsureTime to TimeEnabled. Nothing
// reads this field; no test is failed for exceeding a time threshold.
func AlwaysEnsureTime() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.EnsureTime = registry.TimeEnabled }
}

// NeverEnsureTime sets the descriptor's EnsureTime to TimeDisabled. Nothing
// reads this field; no test is failed for exceeding a time threshold.
func NeverEnsureTime() registry.TestOption {
	return func(d *registry.TestDescriptor) { d.EnsureTime = registry.TimeDisabled }
}
