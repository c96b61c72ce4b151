package cmd

import (
	"io"

	"github.com/grovetools/release/build"
	"github.com/grovetools/release/cli"
	"github.com/grovetools/release/command"
	"github.com/grovetools/release/config"
	"github.com/grovetools/release/errors"
	"github.com/grovetools/release/git"
	"github.com/grovetools/release/logging"
	"github.com/grovetools/release/util/pathutil"
	"github.com/spf13/cobra"
)

const flagDir = "dir"

// loadConfig is the only place that reads ambient state: it resolves --dir,
// reads the project file (or --config), applies the logging section and the
// command-line overrides and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := cli.GetOptions(cmd)
	cli.ConfigureLogging(opts, logging.Config{})

	dir, _ := cmd.Flags().GetString(flagDir)
	workDir, err := pathutil.ResolveDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid working directory").
			WithDetail("dir", dir)
	}

	var cfg *config.Config
	if opts.ConfigFile != "" {
		path, err := pathutil.Expand(opts.ConfigFile)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid config path")
		}
		base := config.Default()
		base.WorkDir = workDir
		if cfg, err = config.Load(path, base); err != nil {
			return nil, err
		}
		if err := cfg.ResolvePaths(); err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.LoadFrom(workDir, cli.GetLogger(cmd, "config"))
		if err != nil {
			return nil, err
		}
	}

	var logCfg logging.Config
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		return nil, err
	}
	cli.ConfigureLogging(opts, logCfg)

	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// collaborators are the objects a command needs to act on a working copy.
type collaborators struct {
	git  *git.CLIClient
	tool *build.Tool
}

func newCollaborators(cmd *cobra.Command, cfg *config.Config, stdout, stderr io.Writer) *collaborators {
	builder := command.NewSafeBuilder().WithDefaultTimeout(cfg.CommandTimeout())
	runner := command.NewRunner(builder, cli.GetLogger(cmd, "command")).WithOutput(stdout, stderr)

	// Only the build tool sees build.env.
	buildExec := &command.EnvExecutor{Env: cfg.Build.Environ()}
	buildRunner := command.NewRunner(
		command.NewSafeBuilderWithExecutor(buildExec).WithDefaultTimeout(cfg.CommandTimeout()),
		cli.GetLogger(cmd, "command"),
	).WithOutput(stdout, stderr)

	return &collaborators{
		git:  git.NewCLIClient(cfg.WorkDir, runner, cli.GetLogger(cmd, "git")),
		tool: build.NewTool(cfg.WorkDir, cfg.Build.Command, cfg.Build.Args, cfg.Build.OutputVar,
			buildRunner, cli.GetLogger(cmd, "build")).WithTimeout(cfg.BuildTimeout()),
	}
}
