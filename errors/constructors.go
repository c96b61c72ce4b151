package errors

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	stderrors "errors"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *GroveError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *GroveError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// GitDirMissing reports a working directory without version-control metadata.
func GitDirMissing(path string) *GroveError {
	return New(ErrCodeGitDirMissing, fmt.Sprintf("%q does not exist", path)).
		WithDetail("path", path)
}

// GitDirInvalid reports a metadata directory that cannot be opened as a repository.
func GitDirInvalid(path string, err error) *GroveError {
	return Wrap(err, ErrCodeGitDirInvalid, fmt.Sprintf("%q is not a readable git repository", path)).
		WithDetail("path", path)
}

// GitDirty reports an unclean working copy. The reason is shown verbatim to the user.
func GitDirty(reason string) *GroveError {
	return New(ErrCodeGitDirty, reason).
		WithDetail("reason", reason)
}

// StatusMalformed reports a status report that violates its expected shape.
func StatusMalformed(reason string) *GroveError {
	return New(ErrCodeStatusMalformed, fmt.Sprintf("malformed git status output: %s", reason))
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *GroveError {
	code := ErrCodeCommandFailed
	switch {
	case stderrors.Is(err, exec.ErrNotFound):
		code = ErrCodeCommandNotFound
	case stderrors.Is(err, context.DeadlineExceeded):
		code = ErrCodeCommandTimeout
	}

	groveErr := Wrap(err, code, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		groveErr = groveErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return groveErr
}

// StepFailed tags a pipeline failure with the identity of the failing step.
func StepFailed(step string, err error) *GroveError {
	groveErr := Wrap(err, ErrCodeStepFailed, fmt.Sprintf("release step %q failed", step)).
		WithDetail("step", step)
	if code, ok := ExitCode(err); ok {
		groveErr = groveErr.WithDetail("exitCode", code)
	}
	return groveErr
}

// ExitCode returns the first exitCode detail found in err's chain.
func ExitCode(err error) (int, bool) {
	for err != nil {
		if groveErr, ok := err.(*GroveError); ok {
			if code, ok := groveErr.Details["exitCode"].(int); ok {
				return code, true
			}
			err = groveErr.Cause
			continue
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return exitErr.ExitCode(), true
		}
		return 0, false
	}
	return 0, false
}

// Reason returns the human readable message of the innermost GroveError,
// falling back to err.Error() for foreign errors.
func Reason(err error) string {
	var last *GroveError
	for cur := err; cur != nil; {
		groveErr, ok := cur.(*GroveError)
		if !ok {
			unwrapper, ok := cur.(interface{ Unwrap() error })
			if !ok {
				break
			}
			cur = unwrapper.Unwrap()
			continue
		}
		last = groveErr
		cur = groveErr.Cause
	}
	if last == nil {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return strings.TrimSpace(last.Message)
}
