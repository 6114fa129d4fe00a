package harness

import (
	"io"
	"time"

	"github.com/giantswarm/gotestr/pkg/report"
)

// Format selects a report.Reporter implementation (§6 "Report formats").
// In addition to the five named formats, a value of "template:<path>"
// (SPEC_FULL.md domain stack, not one of spec.md §6's named formats)
// selects report.Template rendering the file at path.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatTerse  Format = "terse"
	FormatJSON   Format = "json"
	FormatJUnit  Format = "junit"
	FormatCTRF   Format = "ctrf"
)

// Options collects every §6 CLI flag the harness needs, already parsed and
// validated by internal/cli.
type Options struct {
	// Selection (§4.2), forwarded to filter.Criteria.
	IncludeIgnored     bool
	IgnoredOnly        bool
	ExcludeShouldPanic bool
	Bench              bool
	Filter             string
	Exact              bool
	Skip               []string
	Shuffle            bool
	ShuffleSeed        *uint64

	// Execution (§4.5).
	Async            bool
	ThreadCount      int
	NoCapture        bool
	SpawnWorkers     bool
	WorkerBinaryPath string
	WorkerArgs       []string
	DefaultTimeout   time.Duration

	// Reporting.
	List       bool
	Format     Format
	ShowOutput bool
	ReportTime bool
	UnitTh     report.TimeThreshold
	IntegTh    report.TimeThreshold

	Stdout io.Writer
}
