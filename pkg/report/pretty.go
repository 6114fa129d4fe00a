package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// TimeThreshold pairs a warn/critical pair of durations, honoring
// RUST_TEST_TIME_* env vars (§6 environment variables, internal/config).
type TimeThreshold struct {
	Warn     time.Duration
	Critical time.Duration
}

func (t TimeThreshold) isCritical(d time.Duration) bool {
	return t.Critical > 0 && d >= t.Critical
}

func (t TimeThreshold) isWarn(d time.Duration) bool {
	return t.Warn > 0 && d >= t.Warn
}

// Pretty is the default human-readable reporter: one line per test plus a
// summary table at the end, grounded on output/pretty.rs.
type Pretty struct {
	mu sync.Mutex
	w  io.Writer

	showOutput bool
	reportTime bool
	unitTh     TimeThreshold
	integTh    TimeThreshold

	spinner *spinner.Spinner

	longestName    int
	indexFieldLen  int
	registeredLen  int
}

// NewPretty constructs a Pretty reporter writing to w (typically os.Stdout).
func NewPretty(w io.Writer, showOutput, reportTime bool, unitTh, integTh TimeThreshold) *Pretty {
	if w == nil {
		w = os.Stdout
	}
	return &Pretty{w: w, showOutput: showOutput, reportTime: reportTime, unitTh: unitTh, integTh: integTh}
}

func (p *Pretty) StartSuite(tests []TestInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, text.Colors{text.FgHiWhite, text.Bold}.Sprintf("Running %d tests", len(tests)))
	fmt.Fprintln(p.w)

	p.registeredLen = len(tests)
	for _, t := range tests {
		if len(t.FullyQualifiedName) > p.longestName {
			p.longestName = len(t.FullyQualifiedName)
		}
	}
	p.indexFieldLen = len(fmt.Sprintf("%d/%d", len(tests), len(tests)))
}

func (p *Pretty) StartRunningTest(test TestInfo, idx, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	indexField := fmt.Sprintf("%d/%d", idx+1, count)
	padding := pad(p.indexFieldLen - len(indexField))
	fmt.Fprintf(p.w, "%s Running test: %s\n",
		text.Colors{text.FgHiWhite, text.Bold}.Sprintf("[%s%s]", padding, indexField),
		test.FullyQualifiedName)

	if p.spinner == nil {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	}
	p.spinner.Suffix = " " + test.FullyQualifiedName
}

func (p *Pretty) RepeatRunningTest(test TestInfo, idx, count, attempt, maxAttempts int, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s retry %d/%d (%s): %s\n",
		text.Colors{text.FgHiYellow}.Sprint("[RETRY]"), attempt, maxAttempts, reason, test.FullyQualifiedName)
}

func (p *Pretty) FinishedRunningTest(test TestInfo, idx, count int, result Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rendered := p.renderResult(test, result)
	indexField := fmt.Sprintf("%d/%d", idx+1, count)
	padding := pad(p.indexFieldLen - len(indexField))
	resultPadding := pad(p.longestName - len(test.FullyQualifiedName) + 1)

	fmt.Fprintf(p.w, "%s Finished test: %s%s%s\n",
		text.Colors{text.FgHiWhite, text.Bold}.Sprintf("[%s%s]", padding, indexField),
		test.FullyQualifiedName, resultPadding, rendered)
}

func (p *Pretty) renderResult(test TestInfo, result Result) string {
	switch result.Kind {
	case ResultPassed:
		if p.reportTime {
			return fmt.Sprintf("[%s]         <%s>",
				text.Colors{text.FgHiGreen}.Sprint("PASSED"),
				p.timeStyled(test, result.ExecTime))
		}
		return text.Colors{text.FgHiGreen}.Sprintf("[PASSED]")
	case ResultBenchmarked:
		median, spread := 0.0, 0.0
		if result.Summary != nil {
			median = result.Summary.Median
			spread = result.Summary.Max - result.Summary.Min
		}
		return text.Colors{text.FgHiCyan}.Sprintf("[BENCH]         %14.0f ns/iter (+/- %.0f)", median, spread)
	case ResultFailed:
		if p.reportTime {
			return fmt.Sprintf("[%s]         <%s>",
				text.Colors{text.FgHiRed, text.Bold}.Sprint("FAILED"),
				p.timeStyled(test, result.ExecTime))
		}
		return text.Colors{text.FgHiRed, text.Bold}.Sprintf("[FAILED]")
	default:
		return text.Colors{text.FgHiYellow}.Sprintf("[IGNORED]")
	}
}

func (p *Pretty) timeStyled(test TestInfo, d time.Duration) string {
	th := p.unitTh
	if test.Kind == registry.KindIntegration {
		th = p.integTh
	}
	s := fmt.Sprintf("%.3fs", d.Seconds())
	switch {
	case th.isCritical(d):
		return text.Colors{text.FgHiRed}.Sprint(s)
	case th.isWarn(d):
		return text.Colors{text.FgHiYellow}.Sprint(s)
	default:
		return text.Colors{text.FgHiGreen}.Sprint(s)
	}
}

func (p *Pretty) FinishedSuite(tests []TestInfo, outcomes []TestOutcome, execTime time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.showOutput {
		p.writeCapturedOutputs(outcomes, ResultPassed)
	}
	p.writeCapturedOutputs(outcomes, ResultFailed)

	summary := Summarize(p.registeredLen, outcomes, execTime)

	overall := text.Colors{text.FgHiGreen}.Sprint("ok")
	if summary.Failed > 0 {
		overall = text.Colors{text.FgHiRed, text.Bold}.Sprint("FAILED")
	}

	fmt.Fprintln(p.w)
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.AppendHeader(table.Row{"result", "passed", "failed", "ignored", "measured", "filtered out", "time"})
	t.AppendRow(table.Row{overall, summary.Passed, summary.Failed, summary.Ignored, summary.Measured, summary.FilteredOut, fmt.Sprintf("%.3fs", summary.ExecTime.Seconds())})
	t.Render()
	fmt.Fprintln(p.w)

	if summary.Failed > 0 {
		fmt.Fprintln(p.w, "Failed tests:")
		for _, o := range outcomes {
			if o.Result.Kind != ResultFailed {
				continue
			}
			msg, _ := o.Result.FailureMessage()
			if msg == "" {
				msg = "???"
			}
			fmt.Fprintf(p.w, " - %s %s\n", o.Test.FullyQualifiedName, text.Colors{text.FgHiYellow}.Sprintf("(%s)", msg))
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Pretty) writeCapturedOutputs(outcomes []TestOutcome, kind ResultKind) {
	for _, o := range outcomes {
		if o.Result.Kind != kind || len(o.Result.Captured) == 0 {
			continue
		}
		fmt.Fprintf(p.w, "---- %s stdout/err ----\n", o.Test.FullyQualifiedName)
		for _, line := range o.Result.Captured {
			if line.Stderr {
				fmt.Fprintln(p.w, text.Colors{text.FgHiYellow}.Sprint(line.Text))
			} else {
				fmt.Fprintln(p.w, line.Text)
			}
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Pretty) TestList(tests []TestInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range tests {
		fmt.Fprintln(p.w, t.FullyQualifiedName)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%d tests\n", len(tests))
}

func (p *Pretty) Warning(message string) {
	fmt.Fprintln(os.Stderr, text.Colors{text.FgHiYellow}.Sprint(message))
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
