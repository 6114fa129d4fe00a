package report

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOutcomes() []TestOutcome {
	return []TestOutcome{
		{Test: TestInfo{FullyQualifiedName: "pkg::a", Name: "a", ModulePath: "pkg"}, Result: Result{Kind: ResultPassed, ExecTime: time.Millisecond}},
		{Test: TestInfo{FullyQualifiedName: "pkg::b", Name: "b", ModulePath: "pkg"}, Result: Result{Kind: ResultFailed, PanicMessage: "boom"}},
		{Test: TestInfo{FullyQualifiedName: "pkg::c", Name: "c", ModulePath: "pkg"}, Result: Result{Kind: ResultIgnored}},
	}
}

func TestSummarizeCounts(t *testing.T) {
	s := Summarize(4, sampleOutcomes(), 2*time.Second)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Ignored)
	assert.Equal(t, 1, s.FilteredOut)
}

func TestJSONReporterEmitsLineDelimitedEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSON(&buf)
	tests := []TestInfo{{FullyQualifiedName: "pkg::a"}}
	r.StartSuite(tests)
	r.StartRunningTest(tests[0], 0, 1)
	r.FinishedRunningTest(tests[0], 0, 1, Result{Kind: ResultPassed})
	r.FinishedSuite(tests, sampleOutcomes(), time.Second)

	dec := json.NewDecoder(&buf)
	count := 0
	for dec.More() {
		var raw map[string]any
		require.NoError(t, dec.Decode(&raw))
		count++
	}
	assert.Equal(t, 4, count)
}

func TestJUnitReporterProducesWellFormedXML(t *testing.T) {
	var buf bytes.Buffer
	r := NewJUnit(&buf)
	tests := []TestInfo{{FullyQualifiedName: "pkg::a", Name: "a", ModulePath: "pkg"}}
	outcomes := []TestOutcome{{Test: tests[0], Result: Result{Kind: ResultPassed}}}
	r.FinishedSuite(tests, outcomes, time.Second)

	var doc junitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Suites, 1)
	assert.Equal(t, 1, doc.Suites[0].Tests)
}

func TestCTRFReporterProducesValidJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewCTRF(&buf, false)
	tests := []TestInfo{{FullyQualifiedName: "pkg::a", Name: "a", ModulePath: "pkg"}}
	r.StartSuite(tests)
	r.StartRunningTest(tests[0], 0, 1)
	r.FinishedRunningTest(tests[0], 0, 1, Result{Kind: ResultPassed, ExecTime: time.Millisecond})
	r.FinishedSuite(tests, []TestOutcome{{Test: tests[0], Result: Result{Kind: ResultPassed}}}, time.Second)

	var doc ctrfReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "CTRF", doc.ReportFormat)
	assert.Equal(t, 1, doc.Results.Summary.Passed)
}

func TestTerseReporterPrintsOneCharPerResult(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerse(&buf)
	r.StartSuite(nil)
	buf.Reset()
	r.FinishedRunningTest(TestInfo{}, 0, 1, Result{Kind: ResultPassed})
	r.FinishedRunningTest(TestInfo{}, 1, 2, Result{Kind: ResultFailed})
	assert.Equal(t, ".F", buf.String())
}
