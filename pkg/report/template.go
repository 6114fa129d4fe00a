package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// templateData is the value handed to a "--format template:<path>" report
// template, gathering everything a custom template might want to range
// over or summarize.
type templateData struct {
	Tests    []TestInfo
	Outcomes []TestOutcome
	Summary  SuiteSummary
	ExecTime time.Duration
	Warnings []string
}

// Template renders the finished suite (or, under --list, the filtered test
// names) through a user-supplied text/template file with sprig's function
// map layered in, mirroring the teacher's internal/template engine, which
// also builds a text/template.Template and calls Funcs(sprig.TxtFuncMap())
// before executing it. This backs "--format template:<path>", a domain-stack
// enrichment beyond spec.md §6's five named formats (SPEC_FULL.md).
type Template struct {
	w         io.Writer
	path      string
	testCount int
	warnings  []string
}

// NewTemplate constructs a Template reporter that renders path against w.
func NewTemplate(w io.Writer, path string) *Template {
	if w == nil {
		w = os.Stdout
	}
	return &Template{w: w, path: path}
}

func (t *Template) StartSuite(tests []TestInfo) { t.testCount = len(tests) }

func (t *Template) StartRunningTest(test TestInfo, idx, count int) {}

func (t *Template) RepeatRunningTest(test TestInfo, idx, count, attempt, maxAttempts int, reason string) {
}

func (t *Template) FinishedRunningTest(test TestInfo, idx, count int, result Result) {}

func (t *Template) FinishedSuite(tests []TestInfo, outcomes []TestOutcome, execTime time.Duration) {
	t.render(templateData{
		Tests:    tests,
		Outcomes: outcomes,
		Summary:  Summarize(t.testCount, outcomes, execTime),
		ExecTime: execTime,
		Warnings: t.warnings,
	})
}

func (t *Template) TestList(tests []TestInfo) {
	t.render(templateData{Tests: tests})
}

func (t *Template) Warning(message string) {
	t.warnings = append(t.warnings, message)
}

func (t *Template) render(data templateData) {
	src, err := os.ReadFile(t.path)
	if err != nil {
		fmt.Fprintf(t.w, "template report: reading %s: %v\n", t.path, err)
		return
	}
	tmpl, err := template.New(filepath.Base(t.path)).Funcs(sprig.TxtFuncMap()).Parse(string(src))
	if err != nil {
		fmt.Fprintf(t.w, "template report: parsing %s: %v\n", t.path, err)
		return
	}
	if err := tmpl.Execute(t.w, data); err != nil {
		fmt.Fprintf(t.w, "template report: executing %s: %v\n", t.path, err)
	}
}
