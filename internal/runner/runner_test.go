package runner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperl/serverinit/internal/errors"
)

func TestDryRunSpawnsNothing(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, true, false)

	// A command that would fail if it actually ran.
	res, err := r.Run(Command{Argv: []string{"sh", "-c", "exit 1"}})
	require.NoError(t, err)
	assert.Nil(t, res, "dry-run returns no result; callers cannot branch on output")

	out := log.String()
	assert.Contains(t, out, "CMD: sh -c 'exit 1'")
	assert.Contains(t, out, "(dry-run) Command not executed.")
	assert.NotContains(t, out, "exit_code=")
}

func TestSudoDeniedWithoutPermission(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, true, false)

	_, err := r.Run(Command{Argv: []string{"whoami"}, Sudo: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	// The denial happens before logging or spawning anything.
	assert.NotContains(t, log.String(), "CMD:")
}

func TestSudoPrefixInLog(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, true, true)

	_, err := r.Run(Command{Argv: []string{"whoami"}, Sudo: true})
	require.NoError(t, err)
	assert.Contains(t, log.String(), "CMD: sudo -- whoami")
	assert.Contains(t, log.String(), "sudo=true")
}

func TestEnvOverrideNamesLoggedNotValues(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, true, false)

	_, err := r.Run(Command{
		Argv: []string{"env"},
		Env:  map[string]string{"ZEBRA": "secret-value", "ALPHA": "another-secret"},
	})
	require.NoError(t, err)

	out := log.String()
	assert.Contains(t, out, "env_overrides=[ALPHA ZEBRA]", "names sorted")
	assert.NotContains(t, out, "secret-value")
	assert.NotContains(t, out, "another-secret")
}

func TestLiveExecutionCapturesOutput(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, false, false)

	res, err := r.Run(Command{Argv: []string{"sh", "-c", "echo out; echo err >&2"}})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)

	out := log.String()
	assert.Contains(t, out, "exit_code=0")
	assert.Contains(t, out, "--- stdout ---\nout\n")
	assert.Contains(t, out, "--- stderr ---\nerr\n")
}

func TestNonZeroExitFailsWhenChecked(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, false, false)

	res, err := r.Run(Command{Argv: []string{"sh", "-c", "exit 3"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Contains(t, err.Error(), "exit code 3")
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, log.String(), "exit_code=3")
}

func TestAllowFailureSuppressesError(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, false, false)

	res, err := r.Run(Command{
		Argv:         []string{"sh", "-c", "exit 3"},
		AllowFailure: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
}

func TestEnvOverridesReachTheProcess(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, false, false)

	res, err := r.Run(Command{
		Argv: []string{"sh", "-c", "echo $SERVERINIT_TEST_VALUE"},
		Env:  map[string]string{"SERVERINIT_TEST_VALUE": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestWorkingDirectory(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, false, false)
	dir := t.TempDir()

	res, err := r.Run(Command{Argv: []string{"pwd"}, Dir: dir})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
	assert.Contains(t, log.String(), "cwd="+dir)
}

func TestSpawnFailureIsExecError(t *testing.T) {
	var log bytes.Buffer
	r := NewWithWriter(&log, false, false)

	_, err := r.Run(Command{Argv: []string{"/nonexistent/binary/serverinit-test"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
}
