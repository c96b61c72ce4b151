package cmd

import (
	"github.com/grovetools/release/cli"
	"github.com/grovetools/release/config"
	"github.com/grovetools/release/logging"
	"github.com/grovetools/release/release"
	"github.com/grovetools/release/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewReleaseCmd creates the root command. Run without a subcommand it
// publishes the site.
func NewReleaseCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"site-release",
		"Build the site from the primary branch and commit it to the release branch",
	)
	cmd.Long = `Build the site from the primary branch and commit it to the release branch.

The working copy must be clean and in sync with its upstream unless
--no-check-git is given. The build tool is run as "make OUTPUT_DIR=<tmp>"
by default; its output is copied over the release branch without deleting
anything, every output file is staged and a commit
"Updating release from <revision>." is created. Nothing is pushed.`
	cmd.Example = `# publish the site in the current directory
site-release

# publish without the git status check
site-release --dir ~/sites/blog --no-check-git`
	cmd.Args = cobra.NoArgs

	cmd.PersistentFlags().String(flagDir, ".", "working copy of the site")
	config.RegisterFlags(cmd.PersistentFlags())

	// Progress output of every subcommand follows the command's output
	// writer through the context.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(logging.WithWriter(cmd.Context(), cmd.OutOrStdout()))
		return nil
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runRelease(cmd, cfg)
	}

	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewVersionCmd())

	cli.SetVersionTemplate(cmd, version.GetInfo())
	cli.ApplyStyledHelpRecursive(cmd)

	return cmd
}

func runRelease(cmd *cobra.Command, cfg *config.Config) error {
	logger := cli.GetLogger(cmd, "release")
	deps := newCollaborators(cmd, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())

	orchestrator, err := release.New(cfg, deps.git, deps.tool, release.WithLogger(logger))
	if err != nil {
		return err
	}

	result, err := orchestrator.Run(cmd.Context())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"revision": result.Revision,
		"files":    len(result.Staged),
		"branch":   cfg.ReleaseBranch,
	}).Info("Release committed")
	return nil
}
