package cmd

import (
	"github.com/grovetools/release/cli"
	"github.com/grovetools/release/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return cli.NewVersionCommand("site-release", version.GetInfo())
}
