package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/giantswarm/gotestr/internal/cli"
	"github.com/giantswarm/gotestr/internal/config"
	"github.com/giantswarm/gotestr/pkg/gtlog"
	"github.com/giantswarm/gotestr/pkg/harness"
	"github.com/giantswarm/gotestr/pkg/ipc"
	"github.com/giantswarm/gotestr/pkg/registry"
)

// errTestsFailed is a sentinel wrapped into RunE's returned error when the
// suite completed but at least one test failed (§6 "Exit codes: 0 on
// success, 101 on any test failure"), distinguishing it from a fatal
// ArgumentError/RegistrationError/PlanError/WorkerError for exitCodeFor.
var errTestsFailed = errors.New("one or more tests failed")

func disableColors() {
	text.DisableColors()
}

// runRoot is rootCmd's RunE: it either bootstraps a worker (--ipc NAME was
// given) or runs the suite as the primary.
func runRoot(cmd *cobra.Command, args []string) error {
	if rootFlags.IPC != "" {
		return runWorker(cmd, rootFlags.IPC)
	}

	applyColor(rootFlags.Color)

	logOutput, err := openLogFile(rootFlags.LogFile)
	if err != nil {
		return &harness.ArgumentError{Cause: err}
	}
	if logOutput != os.Stderr {
		defer logOutput.Close()
	}
	gtlog.Init(gtlog.LevelInfo, logOutput)

	projectCfg, err := config.Load(".")
	if err != nil {
		return &harness.ArgumentError{Cause: err}
	}

	opts, err := cli.BuildOptions(cmd, rootFlags, projectCfg, os.Stdout)
	if err != nil {
		return err
	}

	summary, err := harness.Run(context.Background(), registry.Default, opts)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return errTestsFailed
	}
	return nil
}

// runWorker bootstraps this process as an IPC worker (§4.7): it builds the
// identical plan the primary would have, then serves exactly the tests the
// primary assigns it over the named socket.
func runWorker(cmd *cobra.Command, socketName string) error {
	projectCfg, err := config.Load(".")
	if err != nil {
		return &harness.WorkerError{Cause: err}
	}

	opts, err := cli.BuildOptions(cmd, rootFlags, projectCfg, nil)
	if err != nil {
		return &harness.WorkerError{Cause: err}
	}

	p, err := harness.BuildWorkerPlan(context.Background(), registry.Default, opts)
	if err != nil {
		return &harness.WorkerError{Cause: err}
	}

	executor := harness.NewWorkerExecutor(p)
	if err := ipc.RunWorker(socketName, executor); err != nil {
		return fmt.Errorf("worker %s: %w", socketName, err)
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return os.Stderr, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
