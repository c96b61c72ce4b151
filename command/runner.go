package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/grovetools/release/errors"
	"github.com/sirupsen/logrus"
)

// waitDelay bounds how long a cancelled command may hold its output pipes.
const waitDelay = 5 * time.Second

// Runner executes built commands inside a directory. Any failure, including
// a nonzero exit, is returned as a COMMAND_FAILED (or COMMAND_NOT_FOUND /
// COMMAND_TIMEOUT) error carrying the command line and exit code.
type Runner struct {
	builder *SafeBuilder
	stdout  io.Writer
	stderr  io.Writer
	logger  *logrus.Entry
}

// NewRunner creates a Runner that streams subprocess output to the process's
// own stdout and stderr.
func NewRunner(builder *SafeBuilder, logger *logrus.Entry) *Runner {
	if builder == nil {
		builder = NewSafeBuilder()
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{
		builder: builder,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logger,
	}
}

// WithOutput redirects streamed subprocess output.
func (r *Runner) WithOutput(stdout, stderr io.Writer) *Runner {
	r.stdout = stdout
	r.stderr = stderr
	return r
}

// Builder returns the SafeBuilder used to create commands, so callers can
// validate arguments with the same rules.
func (r *Runner) Builder() *SafeBuilder {
	return r.builder
}

// Run executes name with args in dir, streaming its output.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	_, err := r.run(ctx, dir, 0, false, name, args...)
	return err
}

// RunWithTimeout is Run with a timeout replacing the builder's default.
// A zero timeout keeps the default.
func (r *Runner) RunWithTimeout(ctx context.Context, timeout time.Duration, dir, name string, args ...string) error {
	_, err := r.run(ctx, dir, timeout, false, name, args...)
	return err
}

// Output executes name with args in dir and returns its stdout. Stderr is
// still streamed.
func (r *Runner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return r.run(ctx, dir, 0, true, name, args...)
}

func (r *Runner) run(ctx context.Context, dir string, timeout time.Duration, capture bool, name string, args ...string) ([]byte, error) {
	cmd, err := r.builder.Build(ctx, name, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to build command")
	}
	if timeout > 0 {
		cmd = cmd.WithTimeout(timeout)
	}
	defer cmd.Release()

	execCmd := cmd.Exec()
	execCmd.Dir = dir
	// Children of a killed build may keep the output pipes open.
	execCmd.WaitDelay = waitDelay
	execCmd.Stderr = r.stderr

	var stdout bytes.Buffer
	if capture {
		execCmd.Stdout = &stdout
	} else {
		execCmd.Stdout = r.stdout
	}

	log := r.logger.WithField("dir", dir)
	log.WithField("command", cmd.String()).Debug("Running command")

	if err := execCmd.Run(); err != nil {
		if ctxErr := cmd.Context().Err(); ctxErr != nil {
			err = ctxErr
		}
		log.WithError(err).WithField("command", cmd.String()).Debug("Command failed")
		return stdout.Bytes(), errors.CommandFailed(cmd.String(), err)
	}

	return stdout.Bytes(), nil
}
