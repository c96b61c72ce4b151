package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/release/command"
	"github.com/grovetools/release/errors"
	"github.com/sirupsen/logrus"
)

// CLIClient runs git subcommands against a single working copy.
type CLIClient struct {
	workDir string
	runner  *command.Runner
	logger  *logrus.Entry
}

// NewCLIClient creates a client bound to workDir. workDir must be absolute.
func NewCLIClient(workDir string, runner *command.Runner, logger *logrus.Entry) *CLIClient {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CLIClient{
		workDir: workDir,
		runner:  runner,
		logger:  logger,
	}
}

// WorkDir returns the working copy the client operates on.
func (c *CLIClient) WorkDir() string {
	return c.workDir
}

// StatusReport returns the raw output of `git status --porcelain=2 --branch`.
func (c *CLIClient) StatusReport(ctx context.Context) ([]byte, error) {
	return c.runner.Output(ctx, c.workDir, "git", "status", "--porcelain=2", "--branch")
}

// CheckClean queries the status of the working copy and returns its verdict.
func (c *CLIClient) CheckClean(ctx context.Context) (*Verdict, error) {
	report, err := c.StatusReport(ctx)
	if err != nil {
		return nil, err
	}
	verdict, err := ParseStatus(report)
	if err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"reason": verdict.Reason.String(),
		"ahead":  verdict.AheadToken,
		"behind": verdict.BehindToken,
	}).Debug("Parsed git status")
	return verdict, nil
}

// Switch checks out branch with `git switch`.
func (c *CLIClient) Switch(ctx context.Context, branch string) error {
	if err := c.runner.Builder().Validate("gitRef", branch); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "refusing to switch branch")
	}
	return c.runner.Run(ctx, c.workDir, "git", "switch", branch)
}

// HeadRevision returns the commit hash of HEAD.
func (c *CLIClient) HeadRevision(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, c.workDir, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	revision := strings.TrimSpace(string(out))
	if revision == "" {
		return "", errors.New(errors.ErrCodeInternal, "git rev-parse HEAD printed nothing")
	}
	return revision, nil
}

// Add stages path, which is relative to the working copy.
func (c *CLIClient) Add(ctx context.Context, path string) error {
	if err := c.runner.Builder().Validate("relativePath", path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("refusing to stage %q", path))
	}
	return c.runner.Run(ctx, c.workDir, "git", "add", path)
}

// Commit records the staged changes with message.
func (c *CLIClient) Commit(ctx context.Context, message string) error {
	return c.runner.Run(ctx, c.workDir, "git", "commit", "-m", message)
}
