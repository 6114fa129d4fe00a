package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/giantswarm/gotestr/pkg/harness"
	"github.com/giantswarm/gotestr/pkg/plan"
)

func TestExitCodeForArgumentError(t *testing.T) {
	err := &harness.ArgumentError{Cause: errors.New("bad flag")}
	assert.Equal(t, ExitCodeArgumentError, exitCodeFor(err))
}

func TestExitCodeForRegistrationError(t *testing.T) {
	err := &harness.RegistrationError{Cause: errors.New("duplicate test")}
	assert.Equal(t, ExitCodeArgumentError, exitCodeFor(err))
}

func TestExitCodeForWorkerError(t *testing.T) {
	err := &harness.WorkerError{Cause: errors.New("socket closed")}
	assert.Equal(t, ExitCodeArgumentError, exitCodeFor(err))
}

func TestExitCodeForAsyncInSyncRuntime(t *testing.T) {
	err := &plan.ErrAsyncInSyncRuntime{DependencyName: "db", ModulePath: "pkg"}
	assert.Equal(t, ExitCodeArgumentError, exitCodeFor(err))
}

func TestExitCodeForTestsFailed(t *testing.T) {
	assert.Equal(t, ExitCodeTestFailure, exitCodeFor(errTestsFailed))
}

func TestExitCodeForUnknownError(t *testing.T) {
	assert.Equal(t, ExitCodeArgumentError, exitCodeFor(errors.New("unexpected")))
}

func TestSetAndGetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())
}
