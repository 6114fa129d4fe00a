package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/gotestr/internal/config"
	"github.com/giantswarm/gotestr/pkg/harness"
)

func newTestCmd() (*cobra.Command, *Flags) {
	cmd := &cobra.Command{Use: "gotestr"}
	f := RegisterFlags(cmd)
	return cmd, f
}

func TestBuildOptionsDefaults(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	opts, err := BuildOptions(cmd, f, config.Default(), nil)
	require.NoError(t, err)

	assert.Equal(t, harness.Format("pretty"), opts.Format)
	assert.True(t, opts.Async)
	assert.Nil(t, opts.ShuffleSeed)
	assert.False(t, opts.Shuffle)
}

func TestBuildOptionsRejectsTestAndBench(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--test", "--bench"}))

	_, err := BuildOptions(cmd, f, config.Default(), nil)
	require.Error(t, err)
	var argErr *harness.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestBuildOptionsRejectsShuffleAndShuffleSeed(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--shuffle", "--shuffle-seed", "7"}))

	_, err := BuildOptions(cmd, f, config.Default(), nil)
	require.Error(t, err)
	var argErr *harness.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestBuildOptionsShuffleSeedSetWhenFlagChanged(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--shuffle-seed", "42"}))

	opts, err := BuildOptions(cmd, f, config.Default(), nil)
	require.NoError(t, err)
	require.NotNil(t, opts.ShuffleSeed)
	assert.Equal(t, uint64(42), *opts.ShuffleSeed)
}

func TestBuildOptionsProjectConfigFillsUnsetFlags(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	projectCfg := config.ProjectConfig{TestThreads: 4, Format: "json", Shuffle: true}
	opts, err := BuildOptions(cmd, f, projectCfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, opts.ThreadCount)
	assert.Equal(t, harness.Format("json"), opts.Format)
	assert.True(t, opts.Shuffle)
}

func TestBuildOptionsFlagOverridesProjectConfig(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--format", "terse", "--test-threads", "2"}))

	projectCfg := config.ProjectConfig{TestThreads: 8, Format: "json"}
	opts, err := BuildOptions(cmd, f, projectCfg, nil)
	require.NoError(t, err)

	assert.Equal(t, harness.Format("terse"), opts.Format)
	assert.Equal(t, 2, opts.ThreadCount)
}

func TestBuildOptionsQuietForcesTerse(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--quiet", "--format", "json"}))

	opts, err := BuildOptions(cmd, f, config.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, harness.Format("terse"), opts.Format)
}

func TestBuildOptionsNilStdoutStaysNilInterface(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	opts, err := BuildOptions(cmd, f, config.Default(), nil)
	require.NoError(t, err)
	assert.Nil(t, opts.Stdout)
}

func TestBuildOptionsCarriesExplicitStdout(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	var buf bytes.Buffer
	opts, err := BuildOptions(cmd, f, config.Default(), &buf)
	require.NoError(t, err)
	assert.Equal(t, &buf, opts.Stdout)
}

func TestBuildOptionsFilterFromPositionalArg(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"some::test::name"}))

	opts, err := BuildOptions(cmd, f, config.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, "some::test::name", opts.Filter)
}

func TestBuildOptionsWorkerArgsForwardSelection(t *testing.T) {
	cmd, f := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--include-ignored", "--exact", "--skip", "slow"}))

	opts, err := BuildOptions(cmd, f, config.Default(), nil)
	require.NoError(t, err)
	assert.Contains(t, opts.WorkerArgs, "--include-ignored")
	assert.Contains(t, opts.WorkerArgs, "--exact")
	assert.Contains(t, opts.WorkerArgs, "--skip")
	assert.Contains(t, opts.WorkerArgs, "slow")
}
