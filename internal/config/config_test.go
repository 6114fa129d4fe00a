package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := "testThreads: 4\nformat: terse\nshuffle: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ProjectConfig{TestThreads: 4, Format: "terse", Shuffle: true}, cfg)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectConfigFileName), []byte("not: [valid"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestUnitTestThresholdDefaultsWhenUnset(t *testing.T) {
	t.Setenv("RUST_TEST_TIME_UNIT", "")
	os.Unsetenv("RUST_TEST_TIME_UNIT")

	th, err := UnitTestThreshold()
	require.NoError(t, err)
	assert.Equal(t, defaultUnitThreshold, th)
}

func TestUnitTestThresholdParsesEnvVar(t *testing.T) {
	t.Setenv("RUST_TEST_TIME_UNIT", "10,20")

	th, err := UnitTestThreshold()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, th.Warn)
	assert.Equal(t, 20*time.Millisecond, th.Critical)
}

func TestUnitTestThresholdRejectsWarnGreaterThanCritical(t *testing.T) {
	t.Setenv("RUST_TEST_TIME_UNIT", "200,100")

	_, err := UnitTestThreshold()
	assert.Error(t, err)
}

func TestUnitTestThresholdRejectsMalformedValue(t *testing.T) {
	t.Setenv("RUST_TEST_TIME_UNIT", "not-a-number")

	_, err := UnitTestThreshold()
	assert.Error(t, err)
}
