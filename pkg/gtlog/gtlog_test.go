package gtlog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoWritesSubsystemAndMessage(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Info("scheduler", "picked test %s", "suite::case")

	out := buf.String()
	assert.Contains(t, out, "subsystem=scheduler")
	assert.Contains(t, out, "picked test suite::case")
}

func TestDebugSuppressedAboveThreshold(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Debug("plan", "considering %s", "x")

	assert.Empty(t, buf.String())
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Error("ipc", errors.New("socket closed"), "worker %d crashed", 3)

	out := buf.String()
	assert.Contains(t, out, "worker 3 crashed")
	assert.Contains(t, out, "socket closed")
}

func TestLevelStringIsNonEmptyUppercase(t *testing.T) {
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		assert.NotEmpty(t, l.String())
		assert.True(t, strings.ToUpper(l.String()) == l.String())
	}
}
