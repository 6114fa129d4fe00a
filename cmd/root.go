package cmd

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/giantswarm/gotestr/internal/cli"
	"github.com/giantswarm/gotestr/pkg/harness"
	"github.com/giantswarm/gotestr/pkg/plan"
)

// Exit codes for CLI commands (§6 "Exit codes: 0 on success, 101 on any
// test failure"), extended with the sentinel-error-driven codes
// SPEC_FULL.md's error-handling section calls for.
const (
	ExitCodeSuccess       = 0
	ExitCodeArgumentError = 1
	ExitCodeTestFailure   = 101
)

var rootFlags *cli.Flags

// rootCmd is the entry point: FILTER is a positional argument, every other
// knob is a flag (§6).
var rootCmd = &cobra.Command{
	Use:   "gotestr [FILTER]",
	Short: "Run tests with a tag-aware, dependency-driven test harness",
	Long: `gotestr discovers tests registered via pkg/testdecl, filters them by
tag/name/ignored state, resolves their dependency graph, and runs them under
a cooperative async scheduler, reporting results in pretty, terse, JSON,
JUnit, or CTRF format.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootFlags = cli.RegisterFlags(rootCmd)
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

// SetVersion sets the version for the root command, injected at build time
// from main.go.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

func applyColor(mode string) {
	switch mode {
	case "always":
		return
	case "never":
		disableColors()
	default: // auto
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			disableColors()
		}
	}
}

// Execute is the main entry point for the CLI application, called from
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gotestr version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor classifies err via errors.As against the sentinel error
// types (§7), mirroring the teacher's getExitCode in cmd/root.go.
func exitCodeFor(err error) int {
	var argErr *harness.ArgumentError
	if errors.As(err, &argErr) {
		return ExitCodeArgumentError
	}
	var regErr *harness.RegistrationError
	if errors.As(err, &regErr) {
		return ExitCodeArgumentError
	}
	var asyncErr *plan.ErrAsyncInSyncRuntime
	if errors.As(err, &asyncErr) {
		return ExitCodeArgumentError
	}
	var workerErr *harness.WorkerError
	if errors.As(err, &workerErr) {
		return ExitCodeArgumentError
	}
	if errors.Is(err, errTestsFailed) {
		return ExitCodeTestFailure
	}
	return ExitCodeArgumentError
}
