// Package build invokes the external tool that renders the site.
package build

import (
	"context"
	"fmt"
	"time"

	"github.com/grovetools/release/command"
	"github.com/grovetools/release/errors"
	"github.com/sirupsen/logrus"
)

// Tool runs a build command such as `make OUTPUT_DIR=<dir>` inside a working copy.
type Tool struct {
	workDir   string
	name      string
	args      []string
	outputVar string
	timeout   time.Duration
	runner    *command.Runner
	logger    *logrus.Entry
}

// NewTool creates a Tool. Args are passed before the output assignment.
func NewTool(workDir, name string, args []string, outputVar string, runner *command.Runner, logger *logrus.Entry) *Tool {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Tool{
		workDir:   workDir,
		name:      name,
		args:      args,
		outputVar: outputVar,
		runner:    runner,
		logger:    logger,
	}
}

// WithTimeout bounds every build with timeout instead of the runner's
// default.
func (t *Tool) WithTimeout(timeout time.Duration) *Tool {
	t.timeout = timeout
	return t
}

// Args returns the full argument list used to build into outputDir.
func (t *Tool) Args(outputDir string) []string {
	args := append([]string(nil), t.args...)
	return append(args, fmt.Sprintf("%s=%s", t.outputVar, outputDir))
}

// CommandLine renders the invocation for progress output.
func (t *Tool) CommandLine(outputDir string) []string {
	return append([]string{t.name}, t.Args(outputDir)...)
}

// Build renders the site into outputDir.
func (t *Tool) Build(ctx context.Context, outputDir string) error {
	if err := t.runner.Builder().Validate("varName", t.outputVar); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid build output variable")
	}
	t.logger.WithFields(logrus.Fields{
		"tool":   t.name,
		"output": outputDir,
	}).Debug("Building site")
	return t.runner.RunWithTimeout(ctx, t.timeout, t.workDir, t.name, t.Args(outputDir)...)
}
