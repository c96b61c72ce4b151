// Package release publishes a built site to a release branch.
package release

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/grovetools/release/config"
	"github.com/grovetools/release/errors"
	"github.com/grovetools/release/git"
	"github.com/grovetools/release/logging"
	"github.com/grovetools/release/util/fsutil"
	"github.com/sirupsen/logrus"
)

// VCS is the version-control surface the pipeline needs.
type VCS interface {
	CheckClean(ctx context.Context) (*git.Verdict, error)
	Switch(ctx context.Context, branch string) error
	HeadRevision(ctx context.Context) (string, error)
	Add(ctx context.Context, path string) error
	Commit(ctx context.Context, message string) error
}

// Builder renders the site into a directory.
type Builder interface {
	Build(ctx context.Context, outputDir string) error
	CommandLine(outputDir string) []string
}

// Orchestrator runs the release pipeline against one working copy. Steps
// run strictly in order and the first failure stops the run; nothing that
// already happened is rolled back.
type Orchestrator struct {
	cfg     *config.Config
	vcs     VCS
	builder Builder
	filter  *fsutil.Filter
	pretty  *logging.PrettyLogger
	logger  *logrus.Entry

	preflight func(gitDir string, logger *logrus.Entry) (string, error)
	mkdirTemp func() (string, error)
	overlay   func(src, dst string, filter *fsutil.Filter) ([]string, error)
	listFiles func(root string, filter *fsutil.Filter) ([]string, error)
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithPrettyLogger sets where step progress is printed. Without it progress
// goes to the writer attached to the context with logging.WithWriter.
func WithPrettyLogger(p *logging.PrettyLogger) Option {
	return func(o *Orchestrator) { o.pretty = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *logrus.Entry) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTempDirParent creates the build output directory under parent instead
// of the system temporary directory.
func WithTempDirParent(parent string) Option {
	return func(o *Orchestrator) {
		o.mkdirTemp = func() (string, error) { return os.MkdirTemp(parent, "site-release-") }
	}
}

// New creates an Orchestrator. cfg must have passed Validate.
func New(cfg *config.Config, vcs VCS, builder Builder, opts ...Option) (*Orchestrator, error) {
	filter, err := fsutil.NewFilter(cfg.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid exclude list")
	}

	o := &Orchestrator{
		cfg:       cfg,
		vcs:       vcs,
		builder:   builder,
		filter:    filter,
		logger:    logging.NewLogger("release"),
		preflight: git.Preflight,
		mkdirTemp: func() (string, error) { return os.MkdirTemp("", "site-release-") },
		overlay:   fsutil.Overlay,
		listFiles: fsutil.ListFiles,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Preflight verifies the metadata directory and, unless disabled, that the
// working copy is clean. It changes nothing.
func (o *Orchestrator) Preflight(ctx context.Context) error {
	branch, err := o.preflight(o.cfg.GitDir, o.logger)
	if err != nil {
		return err
	}
	o.logger.WithFields(logrus.Fields{
		"git_dir": o.cfg.GitDir,
		"branch":  branch,
	}).Debug("Found repository")

	if !o.cfg.CheckGit {
		o.logger.Debug("Git status check disabled")
		return nil
	}

	verdict, err := o.vcs.CheckClean(ctx)
	if err != nil {
		return err
	}
	if !verdict.Clean() {
		return errors.GitDirty(verdict.Message()).
			WithDetail("reason", verdict.Reason.String()).
			WithDetail("ahead", verdict.AheadToken)
	}
	return nil
}

// Run performs Preflight and then the whole pipeline. On a step failure the
// returned error is a STEP_FAILED error and Result.Failure names the step.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	if err := o.Preflight(ctx); err != nil {
		return nil, err
	}
	return o.Publish(ctx)
}

// Publish runs the pipeline without the preflight checks.
func (o *Orchestrator) Publish(ctx context.Context) (*Result, error) {
	result := &Result{}
	pretty := o.progress(ctx)

	// The temporary directory lives exactly as long as this call.
	defer func() {
		if result.TempDir == "" {
			return
		}
		if err := os.RemoveAll(result.TempDir); err != nil {
			o.logger.WithError(err).WithField("dir", result.TempDir).Warn("Failed to remove build output")
		}
	}()

	for _, step := range Steps {
		res := StepResult{Step: step, Err: o.runStep(ctx, pretty, step, result)}
		if !res.OK() {
			result.Failure = &res
			o.logger.WithError(res.Err).WithField("step", string(step)).Error("Release step failed")
			return result, errors.StepFailed(string(step), res.Err)
		}
		result.Completed = append(result.Completed, step)
	}

	pretty.Blank()
	pretty.Success(fmt.Sprintf("Released %s to `%s`", result.Revision, o.cfg.ReleaseBranch))
	return result, nil
}

// progress returns the configured pretty logger or one writing to the
// context's output writer.
func (o *Orchestrator) progress(ctx context.Context) *logging.PrettyLogger {
	if o.pretty != nil {
		return o.pretty
	}
	return logging.NewPrettyLogger().WithWriter(logging.GetWriter(ctx))
}

func (o *Orchestrator) runStep(ctx context.Context, pretty *logging.PrettyLogger, step StepID, result *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch step {
	case StepSwitchPrimary:
		pretty.Step(fmt.Sprintf("Switch to the `%s` branch…", o.cfg.PrimaryBranch))
		return o.vcs.Switch(ctx, o.cfg.PrimaryBranch)

	case StepRevision:
		pretty.Step("Getting current revision…")
		revision, err := o.vcs.HeadRevision(ctx)
		if err != nil {
			return err
		}
		result.Revision = revision
		pretty.Field("Revision", fmt.Sprintf("%q", revision))
		return nil

	case StepTempDir:
		dir, err := o.mkdirTemp()
		if err != nil {
			return err
		}
		result.TempDir = dir
		o.logger.WithField("dir", dir).Debug("Created build output directory")
		return nil

	case StepBuild:
		pretty.Step(fmt.Sprintf("Creating the output in %q running `%s` in %q…",
			result.TempDir, strings.Join(o.builder.CommandLine(result.TempDir), " "), o.cfg.WorkDir))
		return o.builder.Build(ctx, result.TempDir)

	case StepSwitchRelease:
		pretty.Step(fmt.Sprintf("Switch to the `%s` branch…", o.cfg.ReleaseBranch))
		return o.vcs.Switch(ctx, o.cfg.ReleaseBranch)

	case StepCopy:
		pretty.Step(fmt.Sprintf("Updating the `%s` directory (only creating/updating files, not deleting!)…", o.cfg.ReleaseBranch))
		copied, err := o.overlay(result.TempDir, o.cfg.WorkDir, o.filter)
		result.Copied = copied
		return err

	case StepStage:
		pretty.Step("Add all files…")
		files, err := o.listFiles(result.TempDir, o.filter)
		if err != nil {
			return err
		}
		for _, file := range files {
			pretty.Item("adding " + file)
			if err := o.vcs.Add(ctx, file); err != nil {
				return err
			}
			result.Staged = append(result.Staged, file)
		}
		return nil

	case StepCommit:
		pretty.Step("Creating the commit…")
		return o.vcs.Commit(ctx, o.cfg.FormatCommitMessage(result.Revision))

	default:
		return errors.New(errors.ErrCodeInternal, fmt.Sprintf("unknown release step %q", step))
	}
}
