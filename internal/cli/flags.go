package cli

import (
	"github.com/spf13/cobra"
)

// Flags holds every §6 CLI flag value, bound directly to cobra/pflag.
type Flags struct {
	IncludeIgnored     bool
	IgnoredOnly        bool
	ExcludeShouldPanic bool
	Test               bool
	Bench              bool
	List               bool
	LogFile            string
	NoCapture          bool
	TestThreads        int
	Skip               []string
	Quiet              bool
	Exact              bool
	Color              string
	Format             string
	ShowOutput         bool
	UnstableOptions    bool
	ReportTime         bool
	EnsureTime         bool
	Shuffle            bool
	ShuffleSeed        uint64

	// IPC and SpawnWorkers are hidden, worker-bootstrap-only flags (§4.7).
	IPC          string
	SpawnWorkers bool
}

// RegisterFlags binds every §6 flag to cmd, following the teacher's
// RegisterXFlags(cmd, flags) convention (internal/cli/flags.go).
func RegisterFlags(cmd *cobra.Command) *Flags {
	f := &Flags{}

	cmd.Flags().BoolVar(&f.IncludeIgnored, "include-ignored", false, "Run ignored tests in addition to the normal set")
	cmd.Flags().BoolVar(&f.IgnoredOnly, "ignored", false, "Run only ignored tests")
	cmd.Flags().BoolVar(&f.ExcludeShouldPanic, "exclude-should-panic", false, "Exclude tests that declare should_panic")
	cmd.Flags().BoolVar(&f.Test, "test", false, "Run tests (default unless --bench is set)")
	cmd.Flags().BoolVar(&f.Bench, "bench", false, "Run benchmarks instead of tests")
	cmd.Flags().BoolVar(&f.List, "list", false, "List matching tests/benchmarks instead of running them")
	cmd.Flags().StringVar(&f.LogFile, "logfile", "", "Write structured logs to PATH instead of stderr")
	cmd.Flags().BoolVar(&f.NoCapture, "nocapture", false, "Disable output capture globally")
	cmd.Flags().IntVar(&f.TestThreads, "test-threads", 0, "Number of threads to run tests (default: available parallelism)")
	cmd.Flags().StringArrayVar(&f.Skip, "skip", nil, "Skip tests matching FILTER (repeatable)")
	cmd.Flags().BoolVarP(&f.Quiet, "quiet", "q", false, "Alias for --format terse")
	cmd.Flags().BoolVar(&f.Exact, "exact", false, "Treat FILTER as an exact fully-qualified name rather than a substring")
	cmd.Flags().StringVar(&f.Color, "color", "auto", "Colorize output: auto, always, or never")
	cmd.Flags().StringVar(&f.Format, "format", "pretty", "Report format: pretty, terse, json, junit, ctrf, or template:<path>")
	cmd.Flags().BoolVar(&f.ShowOutput, "show-output", false, "Include captured output for passing tests in the report")
	cmd.Flags().BoolVarP(&f.UnstableOptions, "unstable-options", "Z", false, "Allow use of experimental features")
	cmd.Flags().BoolVar(&f.ReportTime, "report-time", false, "Report wall-clock time for every test")
	cmd.Flags().BoolVar(&f.EnsureTime, "ensure-time", false, "Parsed but unused: no test is failed for exceeding its time threshold")
	cmd.Flags().BoolVar(&f.Shuffle, "shuffle", false, "Run tests in a random order")
	cmd.Flags().Uint64Var(&f.ShuffleSeed, "shuffle-seed", 0, "Run tests in an order determined by this seed")

	cmd.Flags().StringVar(&f.IPC, "ipc", "", "")
	cmd.Flags().BoolVar(&f.SpawnWorkers, "spawn-workers", false, "")
	_ = cmd.Flags().MarkHidden("ipc")
	_ = cmd.Flags().MarkHidden("spawn-workers")

	return f
}
