package report

import (
	"time"

	"github.com/giantswarm/gotestr/pkg/registry"
	"github.com/giantswarm/gotestr/pkg/stats"
)

// ResultKind classifies how a single test attempt concluded.
type ResultKind int

const (
	ResultPassed ResultKind = iota
	ResultFailed
	ResultIgnored
	ResultBenchmarked
)

func (k ResultKind) String() string {
	switch k {
	case ResultPassed:
		return "passed"
	case ResultFailed:
		return "failed"
	case ResultIgnored:
		return "ignored"
	case ResultBenchmarked:
		return "benchmarked"
	default:
		return "unknown"
	}
}

// CapturedLine is one line of captured stdout or stderr, tagged with the
// monotonic ordinal it was observed at so pretty/ctrf output can interleave
// the two streams in original order (§4.6).
type CapturedLine struct {
	Ordinal int
	Stderr  bool
	Text    string
}

// Result is the final, policy-applied outcome of one test (after flakiness
// retries and should_panic interpretation have been resolved by the
// scheduler).
type Result struct {
	Kind         ResultKind
	ExecTime     time.Duration
	PanicMessage string
	Retries      int
	Summary      *stats.Summary
	MBPerSec     float64
	Captured     []CapturedLine
}

// FailureMessage returns the panic/assertion message for a failed result.
func (r Result) FailureMessage() (string, bool) {
	if r.Kind != ResultFailed || r.PanicMessage == "" {
		return "", false
	}
	return r.PanicMessage, true
}

// TestInfo is the subset of a registry.TestDescriptor a reporter needs; it
// avoids forcing every reporter to depend on the full descriptor (including
// its TestFunc closure).
type TestInfo struct {
	FullyQualifiedName string
	Name               string
	ModulePath         string
	Kind               registry.TestKind
	IsBenchmark        bool
}

// TestInfoFrom projects a TestDescriptor into the reporter-facing view.
func TestInfoFrom(t *registry.TestDescriptor) TestInfo {
	return TestInfo{
		FullyQualifiedName: t.FullyQualifiedName,
		Name:               t.Name,
		ModulePath:         t.ModulePath,
		Kind:               t.Kind,
		IsBenchmark:        t.IsBenchmark,
	}
}

// TestOutcome pairs a test with its final result, the unit finished_suite
// implementations iterate over.
type TestOutcome struct {
	Test   TestInfo
	Result Result
}

// Reporter is the pluggable lifecycle-event consumer described in spec.md
// §6 "Report formats". Implementations must be safe for concurrent use:
// async and sync scheduler modes both call these methods from multiple
// goroutines.
type Reporter interface {
	StartSuite(tests []TestInfo)
	StartRunningTest(test TestInfo, idx, count int)
	RepeatRunningTest(test TestInfo, idx, count, attempt, maxAttempts int, reason string)
	FinishedRunningTest(test TestInfo, idx, count int, result Result)
	FinishedSuite(tests []TestInfo, outcomes []TestOutcome, execTime time.Duration)
	TestList(tests []TestInfo)
	Warning(message string)
}

// SuiteSummary aggregates outcome counts, mirroring the upstream
// `SuiteResult` computed once per finished_suite call.
type SuiteSummary struct {
	Passed      int
	Failed      int
	Ignored     int
	Measured    int
	FilteredOut int
	ExecTime    time.Duration
}

// Summarize computes a SuiteSummary from the final outcomes plus the total
// registered-test count (the difference gives FilteredOut).
func Summarize(registeredCount int, outcomes []TestOutcome, execTime time.Duration) SuiteSummary {
	s := SuiteSummary{ExecTime: execTime}
	for _, o := range outcomes {
		switch o.Result.Kind {
		case ResultPassed:
			s.Passed++
		case ResultFailed:
			s.Failed++
		case ResultIgnored:
			s.Ignored++
		case ResultBenchmarked:
			s.Measured++
		}
	}
	s.FilteredOut = registeredCount - len(outcomes)
	if s.FilteredOut < 0 {
		s.FilteredOut = 0
	}
	return s
}
