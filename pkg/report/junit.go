package report

import (
	"encoding/xml"
	"io"
	"os"
	"sync"
	"time"
)

// JUnit emits a single JUnit XML document at finished_suite, grounded on
// output/junit.rs.
type JUnit struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJUnit constructs a JUnit reporter writing to w.
func NewJUnit(w io.Writer) *JUnit {
	if w == nil {
		w = os.Stdout
	}
	return &JUnit{w: w}
}

type junitFailure struct {
	XMLName xml.Name `xml:"failure"`
	Type    string   `xml:"type,attr"`
	Message string   `xml:"message,attr,omitempty"`
}

type junitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Package   string          `xml:"package,attr"`
	ID        string          `xml:"id,attr"`
	Errors    int             `xml:"errors,attr"`
	Failures  int             `xml:"failures,attr"`
	Tests     int             `xml:"tests,attr"`
	Skipped   int             `xml:"skipped,attr"`
	TestCases []junitTestCase `xml:"testcase"`
	SystemOut string          `xml:"system-out"`
	SystemErr string          `xml:"system-err"`
}

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

func (j *JUnit) StartSuite(tests []TestInfo) {}

func (j *JUnit) StartRunningTest(test TestInfo, idx, count int) {}

func (j *JUnit) RepeatRunningTest(test TestInfo, idx, count, attempt, maxAttempts int, reason string) {
}

func (j *JUnit) FinishedRunningTest(test TestInfo, idx, count int, result Result) {}

func (j *JUnit) FinishedSuite(tests []TestInfo, outcomes []TestOutcome, execTime time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()

	summary := Summarize(len(tests), outcomes, execTime)

	suite := junitTestSuite{
		Name: "test", Package: "test1", ID: "0",
		Failures: summary.Failed, Tests: len(outcomes), Skipped: summary.Ignored,
	}
	for _, o := range outcomes {
		tc := junitTestCase{Name: o.Test.Name, ClassName: o.Test.ModulePath, Time: "0.0"}
		if o.Result.Kind == ResultFailed {
			msg, _ := o.Result.FailureMessage()
			tc.Failure = &junitFailure{Type: "assert", Message: msg}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	doc := junitTestSuites{Suites: []junitTestSuite{suite}}
	out, _ := xml.MarshalIndent(doc, "", "    ")
	j.w.Write([]byte(xml.Header))
	j.w.Write(out)
	j.w.Write([]byte("\n"))
}

func (j *JUnit) TestList(tests []TestInfo) {
	j.mu.Lock()
	defer j.mu.Unlock()

	suite := junitTestSuite{Name: "test", Package: "test1", ID: "0"}
	for _, t := range tests {
		suite.TestCases = append(suite.TestCases, junitTestCase{Name: t.Name, ClassName: t.ModulePath})
	}
	doc := junitTestSuites{Suites: []junitTestSuite{suite}}
	out, _ := xml.MarshalIndent(doc, "", "    ")
	j.w.Write([]byte(xml.Header))
	j.w.Write(out)
	j.w.Write([]byte("\n"))
}

func (j *JUnit) Warning(message string) {}
