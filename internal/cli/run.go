package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/gotestr/internal/config"
	"github.com/giantswarm/gotestr/pkg/harness"
)

// BuildOptions converts parsed flags (plus the project config's defaults,
// applied only where the corresponding flag was never set) into a
// harness.Options, the bridge between §6's CLI surface and the core.
// stdout may be nil (a worker process has nothing to report to).
func BuildOptions(cmd *cobra.Command, f *Flags, projectCfg config.ProjectConfig, stdout io.Writer) (harness.Options, error) {
	if f.Test && f.Bench {
		return harness.Options{}, &harness.ArgumentError{Cause: fmt.Errorf("--test and --bench cannot both be set")}
	}
	if f.Shuffle && cmd.Flags().Changed("shuffle-seed") {
		return harness.Options{}, &harness.ArgumentError{Cause: fmt.Errorf("--shuffle and --shuffle-seed cannot both be set")}
	}

	format := f.Format
	if !cmd.Flags().Changed("format") && projectCfg.Format != "" {
		format = projectCfg.Format
	}
	if f.Quiet {
		format = "terse"
	}

	threads := f.TestThreads
	if threads == 0 && projectCfg.TestThreads > 0 {
		threads = projectCfg.TestThreads
	}

	shuffle := f.Shuffle || (!cmd.Flags().Changed("shuffle") && projectCfg.Shuffle)

	var shuffleSeed *uint64
	if cmd.Flags().Changed("shuffle-seed") {
		shuffleSeed = &f.ShuffleSeed
	}

	unitTh, err := config.UnitTestThreshold()
	if err != nil {
		return harness.Options{}, &harness.ArgumentError{Cause: err}
	}
	integTh, err := config.IntegrationTestThreshold()
	if err != nil {
		return harness.Options{}, &harness.ArgumentError{Cause: err}
	}

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	return harness.Options{
		IncludeIgnored:     f.IncludeIgnored,
		IgnoredOnly:        f.IgnoredOnly,
		ExcludeShouldPanic: f.ExcludeShouldPanic,
		Bench:              f.Bench,
		Filter:             filterArg(cmd),
		Exact:              f.Exact,
		Skip:               f.Skip,
		Shuffle:            shuffle,
		ShuffleSeed:        shuffleSeed,

		Async:            true,
		ThreadCount:      threads,
		NoCapture:        f.NoCapture,
		SpawnWorkers:     f.SpawnWorkers,
		WorkerBinaryPath: exe,
		WorkerArgs:       workerArgs(f),
		DefaultTimeout:   0,

		List:       f.List,
		Format:     harness.Format(format),
		ShowOutput: f.ShowOutput,
		ReportTime: f.ReportTime,
		UnitTh:     unitTh,
		IntegTh:    integTh,

		Stdout: stdout,
	}, nil
}

func filterArg(cmd *cobra.Command) string {
	if len(cmd.Flags().Args()) > 0 {
		return cmd.Flags().Args()[0]
	}
	return ""
}

// workerArgs re-derives the selection flags (--include-ignored, --ignored,
// --exclude-should-panic, --bench, --exact, --skip) a spawned worker needs to
// bootstrap its own Registry/Plan (§4.7), excluding --ipc/--spawn-workers
// themselves which ipc.Pool adds. The positional FILTER and --format are not
// forwarded, so a worker's plan holds every test these flags select.
func workerArgs(f *Flags) []string {
	var args []string
	if f.IncludeIgnored {
		args = append(args, "--include-ignored")
	}
	if f.IgnoredOnly {
		args = append(args, "--ignored")
	}
	if f.ExcludeShouldPanic {
		args = append(args, "--exclude-should-panic")
	}
	if f.Bench {
		args = append(args, "--bench")
	}
	if f.Exact {
		args = append(args, "--exact")
	}
	for _, s := range f.Skip {
		args = append(args, "--skip", s)
	}
	return args
}
