package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovetools/release/command"
	"github.com/grovetools/release/errors"
	"github.com/grovetools/release/util/fsutil"
)

// Validate checks if the configuration is valid. ResolvePaths must have run.
func (c *Config) Validate() error {
	if !filepath.IsAbs(c.WorkDir) {
		return errors.ConfigInvalid("work dir must be an absolute path").
			WithDetail("workDir", c.WorkDir)
	}
	if !filepath.IsAbs(c.GitDir) {
		return errors.ConfigInvalid("git dir must be an absolute path").
			WithDetail("gitDir", c.GitDir)
	}

	builder := command.NewSafeBuilder()
	for field, branch := range map[string]string{
		"primary_branch": c.PrimaryBranch,
		"release_branch": c.ReleaseBranch,
	} {
		if err := builder.Validate("gitRef", branch); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid %s", field)).
				WithDetail("field", field)
		}
	}
	if c.PrimaryBranch == c.ReleaseBranch {
		return errors.ConfigInvalid(fmt.Sprintf("primary and release branch are both %q", c.PrimaryBranch))
	}

	if strings.TrimSpace(c.Build.Command) == "" {
		return errors.ConfigInvalid("build.command cannot be empty")
	}
	if err := builder.Validate("varName", c.Build.OutputVar); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid build.output_var").
			WithDetail("field", "build.output_var")
	}

	for key := range c.Build.Env {
		if err := builder.Validate("varName", key); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid build.env entry").
				WithDetail("field", "build.env")
		}
	}
	if c.Build.Timeout != "" {
		if d, err := time.ParseDuration(c.Build.Timeout); err != nil || d <= 0 {
			return errors.ConfigInvalid(fmt.Sprintf("build.timeout %q is not a positive duration", c.Build.Timeout)).
				WithDetail("field", "build.timeout")
		}
	}

	if err := validateCommitMessage(c.CommitMessage); err != nil {
		return err
	}

	if _, err := fsutil.NewFilter(c.Exclude); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid exclude list").
			WithDetail("field", "exclude")
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("timeout %q is not a positive duration", c.Timeout)).
			WithDetail("field", "timeout")
	}

	return nil
}

// validateCommitMessage requires exactly one %s and no other verbs.
func validateCommitMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return errors.ConfigInvalid("commit_message cannot be empty")
	}
	if strings.Count(strings.ReplaceAll(msg, "%%", ""), "%") != 1 || !strings.Contains(msg, "%s") {
		return errors.ConfigInvalid(fmt.Sprintf("commit_message %q must contain exactly one %%s for the revision", msg)).
			WithDetail("field", "commit_message")
	}
	return nil
}
