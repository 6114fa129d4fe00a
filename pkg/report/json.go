package report

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// JSON emits one line-delimited JSON object per lifecycle event, grounded
// on output/json.rs.
type JSON struct {
	mu            sync.Mutex
	w             io.Writer
	registeredLen int
}

// NewJSON constructs a JSON reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	if w == nil {
		w = os.Stdout
	}
	return &JSON{w: w}
}

type jsonEvent struct {
	Type        string  `json:"type"`
	Event       string  `json:"event"`
	Name        string  `json:"name,omitempty"`
	TestCount   int     `json:"test_count,omitempty"`
	Stdout      string  `json:"stdout,omitempty"`
	Passed      int     `json:"passed,omitempty"`
	Failed      int     `json:"failed,omitempty"`
	Ignored     int     `json:"ignored,omitempty"`
	Measured    int     `json:"measured,omitempty"`
	FilteredOut int     `json:"filtered_out,omitempty"`
	ExecTime    float64 `json:"exec_time,omitempty"`
}

func (j *JSON) emit(e jsonEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()
	enc := json.NewEncoder(j.w)
	_ = enc.Encode(e)
}

func (j *JSON) StartSuite(tests []TestInfo) {
	j.registeredLen = len(tests)
	j.emit(jsonEvent{Type: "suite", Event: "started", TestCount: len(tests)})
}

func (j *JSON) StartRunningTest(test TestInfo, idx, count int) {
	j.emit(jsonEvent{Type: "test", Event: "started", Name: test.FullyQualifiedName})
}

func (j *JSON) RepeatRunningTest(test TestInfo, idx, count, attempt, maxAttempts int, reason string) {
}

func (j *JSON) FinishedRunningTest(test TestInfo, idx, count int, result Result) {
	event := jsonEvent{Type: "test", Name: test.FullyQualifiedName}
	switch result.Kind {
	case ResultPassed, ResultBenchmarked:
		event.Event = "ok"
	case ResultFailed:
		event.Event = "failed"
		if msg, ok := result.FailureMessage(); ok {
			event.Stdout = "Error: \"" + msg + "\"\n"
		}
	default:
		event.Event = "ignored"
	}
	j.emit(event)
}

func (j *JSON) FinishedSuite(tests []TestInfo, outcomes []TestOutcome, execTime time.Duration) {
	summary := Summarize(j.registeredLen, outcomes, execTime)
	event := "ok"
	if summary.Failed > 0 {
		event = "failed"
	}
	j.emit(jsonEvent{
		Type: "suite", Event: event,
		Passed: summary.Passed, Failed: summary.Failed, Ignored: summary.Ignored,
		Measured: summary.Measured, FilteredOut: summary.FilteredOut,
		ExecTime: execTime.Seconds(),
	})
}

func (j *JSON) TestList(tests []TestInfo) {
	j.mu.Lock()
	defer j.mu.Unlock()
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = t.FullyQualifiedName
	}
	enc := json.NewEncoder(j.w)
	_ = enc.Encode(names)
}

func (j *JSON) Warning(message string) {
	j.emit(jsonEvent{Type: "suite", Event: "warning", Name: message})
}
