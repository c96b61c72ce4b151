package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/release/cli"
	"github.com/grovetools/release/errors"
	"github.com/grovetools/release/git"
	"github.com/grovetools/release/logging"
	"github.com/spf13/cobra"
)

var (
	cleanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dirtyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the working copy is ready to be released",
		Long: `Run the same checks as a release without changing anything: the
metadata directory must exist and the working copy must have no local
changes and no unpushed commits. Exits with status 1 when it is not clean.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			branch, err := git.Preflight(cfg.GitDir, cli.GetLogger(cmd, "git"))
			if err != nil {
				return err
			}

			deps := newCollaborators(cmd, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			verdict, err := deps.git.CheckClean(cmd.Context())
			if err != nil {
				return err
			}

			printVerdict(logging.NewPrettyLogger().WithWriter(logging.GetWriter(cmd.Context())), branch, verdict)
			if !verdict.Clean() {
				return errors.GitDirty(verdict.Message()).
					WithDetail("ahead", verdict.AheadToken)
			}
			return nil
		},
	}
}

func printVerdict(p *logging.PrettyLogger, branch string, v *git.Verdict) {
	if branch != "" {
		p.Field("Branch", branch)
	}
	p.Field("Ahead", v.Ahead)
	p.Field("Behind", v.Behind)
	if !v.TagChecked {
		p.Field("Tag", "not checked")
	}

	status := cleanStyle.Render(v.Reason.String())
	if !v.Clean() {
		status = dirtyStyle.Render(v.Reason.String())
	}
	p.Field("Status", status)
	for _, line := range v.ContentLines {
		p.Item(line)
	}
	if v.Clean() {
		p.Success(fmt.Sprintf("ready to release from %s", branchOrHEAD(branch)))
	}
}

func branchOrHEAD(branch string) string {
	if branch == "" {
		return "HEAD"
	}
	return "`" + branch + "`"
}
