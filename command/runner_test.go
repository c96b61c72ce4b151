package command

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/release/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunner_Output(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	var stderr bytes.Buffer
	r := NewRunner(nil, nil).WithOutput(&bytes.Buffer{}, &stderr)

	out, err := r.Output(context.Background(), dir, "sh", "-c", "pwd; echo oops >&2")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(out)), dirBase(dir)))
	assert.Equal(t, "oops\n", stderr.String())
}

func TestRunner_RunStreamsStdout(t *testing.T) {
	requireSh(t)
	var stdout bytes.Buffer
	r := NewRunner(nil, nil).WithOutput(&stdout, &bytes.Buffer{})

	require.NoError(t, r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo built"))
	assert.Equal(t, "built\n", stdout.String())
}

func TestRunner_NonzeroExit(t *testing.T) {
	requireSh(t)
	r := NewRunner(nil, nil).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "exit 7")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))
	code, ok := errors.ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 7, code)
}

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner(nil, nil).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	err := r.Run(context.Background(), t.TempDir(), "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandNotFound))
}

func TestRunner_EnvExecutor(t *testing.T) {
	requireSh(t)
	builder := NewSafeBuilderWithExecutor(&EnvExecutor{Env: []string{"RELEASE_TEST_VALUE=42"}})
	r := NewRunner(builder, nil).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	out, err := r.Output(context.Background(), t.TempDir(), "sh", "-c", "printf %s \"$RELEASE_TEST_VALUE\"")
	require.NoError(t, err)
	assert.Equal(t, "42", string(out))
}

func TestRunner_RunWithTimeout(t *testing.T) {
	requireSh(t)
	r := NewRunner(NewSafeBuilder().WithDefaultTimeout(time.Hour), nil).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	start := time.Now()
	err := r.RunWithTimeout(context.Background(), 100*time.Millisecond, t.TempDir(), "sh", "-c", "exec sleep 5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 4*time.Second)

	require.NoError(t, r.RunWithTimeout(context.Background(), 0, t.TempDir(), "sh", "-c", "true"))
}

func dirBase(dir string) string {
	parts := strings.Split(strings.TrimRight(dir, "/"), "/")
	return parts[len(parts)-1]
}
