package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateReporterRendersSprigFuncsAndSummary(t *testing.T) {
	tmplPath := filepath.Join(t.TempDir(), "report.tmpl")
	src := "{{.Summary.Passed}} passed, {{.Summary.Failed}} failed\n" +
		"{{range .Outcomes}}{{.Test.Name | upper}}: {{.Result.Kind}}\n{{end}}"
	require.NoError(t, os.WriteFile(tmplPath, []byte(src), 0o644))

	var buf bytes.Buffer
	r := NewTemplate(&buf, tmplPath)
	tests := []TestInfo{{FullyQualifiedName: "pkg::a", Name: "a"}}
	r.StartSuite(tests)
	r.FinishedSuite(tests, sampleOutcomes(), time.Second)

	out := buf.String()
	assert.Contains(t, out, "1 passed, 1 failed")
	assert.Contains(t, out, "A: passed")
	assert.Contains(t, out, "B: failed")
}

func TestTemplateReporterListRendersTestNamesOnly(t *testing.T) {
	tmplPath := filepath.Join(t.TempDir(), "list.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("{{range .Tests}}{{.FullyQualifiedName}}\n{{end}}"), 0o644))

	var buf bytes.Buffer
	r := NewTemplate(&buf, tmplPath)
	r.TestList([]TestInfo{{FullyQualifiedName: "pkg::a"}, {FullyQualifiedName: "pkg::b"}})

	assert.Equal(t, "pkg::a\npkg::b\n", buf.String())
}

func TestTemplateReporterReportsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	r := NewTemplate(&buf, filepath.Join(t.TempDir(), "missing.tmpl"))
	r.FinishedSuite(nil, nil, 0)
	assert.Contains(t, buf.String(), "template report: reading")
}
