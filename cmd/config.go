package cmd

import (
	"fmt"

	"github.com/grovetools/release/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Shows the configuration a release would use: the defaults, overlaid
with the project file (release.yml, release.yaml or release.toml in the
working copy, or --config) and then with the command-line flags.
This is useful for debugging configuration issues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			out := logging.GetWriter(cmd.Context())
			fmt.Fprintf(out, "# Working copy: %s\n", cfg.WorkDir)
			fmt.Fprint(out, string(data))
			return nil
		},
	}
	return cmd
}
