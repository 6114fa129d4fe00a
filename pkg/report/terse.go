package report

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Terse prints one character per test result and defers suite-level
// formatting to an embedded Pretty, mirroring output/terse.rs's delegation
// to its own Pretty instance.
type Terse struct {
	pretty *Pretty
	w      io.Writer
}

// NewTerse constructs a Terse reporter writing to w.
func NewTerse(w io.Writer) *Terse {
	if w == nil {
		w = os.Stdout
	}
	return &Terse{pretty: NewPretty(w, false, false, TimeThreshold{}, TimeThreshold{}), w: w}
}

func (t *Terse) StartSuite(tests []TestInfo) { t.pretty.StartSuite(tests) }

func (t *Terse) StartRunningTest(test TestInfo, idx, count int) {}

func (t *Terse) RepeatRunningTest(test TestInfo, idx, count, attempt, maxAttempts int, reason string) {
}

func (t *Terse) FinishedRunningTest(test TestInfo, idx, count int, result Result) {
	switch result.Kind {
	case ResultPassed:
		fmt.Fprint(t.w, ".")
	case ResultBenchmarked:
		fmt.Fprint(t.w, "B")
	case ResultFailed:
		fmt.Fprint(t.w, "F")
	default:
		fmt.Fprint(t.w, "i")
	}
}

func (t *Terse) FinishedSuite(tests []TestInfo, outcomes []TestOutcome, execTime time.Duration) {
	fmt.Fprintln(t.w)
	t.pretty.FinishedSuite(tests, outcomes, execTime)
}

func (t *Terse) TestList(tests []TestInfo) { t.pretty.TestList(tests) }

func (t *Terse) Warning(message string) { t.pretty.Warning(message) }
