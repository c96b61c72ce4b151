package config

import (
	"github.com/grovetools/release/errors"
	"github.com/grovetools/release/util/pathutil"
	"github.com/spf13/pflag"
)

// Flag names shared by the commands that build a Config.
const (
	FlagNoCheckGit    = "no-check-git"
	FlagPrimaryBranch = "primary-branch"
	FlagReleaseBranch = "release-branch"
	FlagBuildCommand  = "build-cmd"
	FlagGitDir        = "git-dir"
	FlagTimeout       = "timeout"
	FlagExclude       = "exclude"
)

// RegisterFlags adds the configuration override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Bool(FlagNoCheckGit, false, "disable the check of the git status")
	fs.String(FlagPrimaryBranch, DefaultPrimaryBranch, "branch the site is built from")
	fs.String(FlagReleaseBranch, DefaultReleaseBranch, "branch receiving the build output")
	fs.String(FlagBuildCommand, DefaultBuildCommand, "build tool invoked with <output_var>=<dir>")
	fs.String(FlagGitDir, "", "version-control metadata directory (default <dir>/.git)")
	fs.String(FlagTimeout, DefaultTimeout, "timeout for each external command")
	fs.StringSlice(FlagExclude, nil, "pattern of build output to neither copy nor stage (repeatable)")
}

// ApplyFlags overrides c with every flag the user set explicitly. Flags left
// at their default never override the project file.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagNoCheckGit:
			var disabled bool
			disabled, err = fs.GetBool(FlagNoCheckGit)
			c.CheckGit = !disabled
		case FlagPrimaryBranch:
			c.PrimaryBranch = f.Value.String()
		case FlagReleaseBranch:
			c.ReleaseBranch = f.Value.String()
		case FlagBuildCommand:
			c.Build.Command = f.Value.String()
		case FlagTimeout:
			c.Timeout = f.Value.String()
		case FlagExclude:
			var patterns []string
			patterns, err = fs.GetStringSlice(FlagExclude)
			c.Exclude = append(c.Exclude, patterns...)
		case FlagGitDir:
			c.GitDir, err = pathutil.ExpandRelativeTo(c.WorkDir, f.Value.String())
		}
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid command-line flag")
	}
	return nil
}
