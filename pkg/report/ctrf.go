package report

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// CTRF emits a single CTRF (Common Test Report Format) JSON document at
// finished_suite, grounded on output/ctrf.rs's use of the ctrf_rs crate.
type CTRF struct {
	mu         sync.Mutex
	w          io.Writer
	showOutput bool
	start      time.Time
	started    bool
	pending    map[string]*ctrfTest
	order      []string
}

// NewCTRF constructs a CTRF reporter writing to w.
func NewCTRF(w io.Writer, showOutput bool) *CTRF {
	if w == nil {
		w = os.Stdout
	}
	return &CTRF{w: w, showOutput: showOutput, pending: map[string]*ctrfTest{}}
}

type ctrfTest struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Duration int64    `json:"duration"`
	Suite    string   `json:"suite,omitempty"`
	Message  string   `json:"message,omitempty"`
	Flaky    *bool    `json:"flaky,omitempty"`
	Retries  *int     `json:"retries,omitempty"`
	Stdout   []string `json:"stdout,omitempty"`
	Stderr   []string `json:"stderr,omitempty"`
	Start    int64    `json:"start,omitempty"`
	Stop     int64    `json:"stop,omitempty"`
}

type ctrfSummary struct {
	Tests    int   `json:"tests"`
	Passed   int   `json:"passed"`
	Failed   int   `json:"failed"`
	Skipped  int   `json:"skipped"`
	Pending  int   `json:"pending"`
	Other    int   `json:"other"`
	Start    int64 `json:"start"`
	Stop     int64 `json:"stop"`
}

type ctrfResults struct {
	Tool struct {
		Name string `json:"name"`
	} `json:"tool"`
	Summary ctrfSummary `json:"summary"`
	Tests   []ctrfTest  `json:"tests"`
}

type ctrfReport struct {
	ReportFormat string      `json:"reportFormat"`
	SpecVersion  string      `json:"specVersion"`
	Results      ctrfResults `json:"results"`
}

func (c *CTRF) StartSuite(tests []TestInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
	c.started = true
}

func (c *CTRF) StartRunningTest(test TestInfo, idx, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[test.FullyQualifiedName] = &ctrfTest{
		Name: test.FullyQualifiedName, Status: "pending", Start: time.Now().UnixMilli(),
	}
	c.order = append(c.order, test.FullyQualifiedName)
}

func (c *CTRF) RepeatRunningTest(test TestInfo, idx, count, attempt, maxAttempts int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.pending[test.FullyQualifiedName]
	if !ok {
		return
	}
	r := attempt
	if t.Retries == nil {
		t.Retries = &r
	} else {
		*t.Retries++
	}
}

func (c *CTRF) FinishedRunningTest(test TestInfo, idx, count int, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.pending[test.FullyQualifiedName]

	status := "other"
	switch result.Kind {
	case ResultPassed, ResultBenchmarked:
		status = "passed"
	case ResultFailed:
		status = "failed"
	case ResultIgnored:
		status = "skipped"
	}

	t := ctrfTest{
		Name: test.FullyQualifiedName, Status: status,
		Duration: result.ExecTime.Milliseconds(), Suite: test.ModulePath,
	}
	if msg, ok := result.FailureMessage(); ok {
		t.Message = msg
	}
	if pending != nil {
		t.Start = pending.Start
		t.Retries = pending.Retries
	}
	t.Stop = time.Now().UnixMilli()

	if result.Kind == ResultFailed || c.showOutput {
		for _, line := range result.Captured {
			if line.Stderr {
				t.Stderr = append(t.Stderr, line.Text)
			} else {
				t.Stdout = append(t.Stdout, line.Text)
			}
		}
	}

	c.pending[test.FullyQualifiedName] = &t
}

func (c *CTRF) FinishedSuite(tests []TestInfo, outcomes []TestOutcome, execTime time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := ctrfSummary{Start: c.start.UnixMilli(), Stop: c.start.Add(execTime).UnixMilli()}
	results := make([]ctrfTest, 0, len(c.order))
	for _, name := range c.order {
		t := c.pending[name]
		if t == nil {
			continue
		}
		results = append(results, *t)
		summary.Tests++
		switch t.Status {
		case "passed":
			summary.Passed++
		case "failed":
			summary.Failed++
		case "skipped":
			summary.Skipped++
		case "pending":
			summary.Pending++
		default:
			summary.Other++
		}
	}

	report := ctrfReport{
		ReportFormat: "CTRF", SpecVersion: "0.0.0",
	}
	report.Results.Tool.Name = "gotestr"
	report.Results.Summary = summary
	report.Results.Tests = results

	out, _ := json.Marshal(report)
	c.w.Write(out)
	c.w.Write([]byte("\n"))
}

func (c *CTRF) TestList(tests []TestInfo) {}

func (c *CTRF) Warning(message string) {}
