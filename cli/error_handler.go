package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/release/errors"
)

// ErrorHandler reports errors on stderr and picks the process exit code
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a diagnostic for err and returns the exit code the process
// should terminate with. A nil error yields 0.
func (h *ErrorHandler) Handle(err error) int {
	if err == nil {
		return 0
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeGitDirMissing:
		fmt.Fprintf(h.Out, "ERROR: %s\n", errors.Reason(err))
		fmt.Fprintf(h.Out, "Run from the root of the site's working copy or pass --dir.\n")

	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "ERROR: configuration file not found: %s\n", errors.Reason(err))

	case errors.ErrCodeStepFailed:
		step := ""
		if groveErr, ok := errors.As(err); ok {
			step, _ = groveErr.Details["step"].(string)
		}
		fmt.Fprintf(h.Out, "ERROR: release step %q failed: %s\n", step, errors.Reason(err))

	default:
		fmt.Fprintf(h.Out, "ERROR: %s\n", errors.Reason(err))
	}

	if h.Verbose {
		if groveErr, ok := errors.As(err); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", groveErr.ToJSON())
		}
	}

	return ExitCode(err)
}

// ExitCode maps an error to a process exit code. A failed step exits with
// the exit code of the process that failed it; everything else, including a
// status report without a usable tracking header, exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeStepFailed:
		if code, ok := errors.ExitCode(err); ok && code > 0 {
			return code
		}
		return 1
	default:
		return 1
	}
}
