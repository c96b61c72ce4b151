package cli

import (
	"github.com/grovetools/release/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the options shared by every command
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		// The error handler owns error output and the exit code.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to a release.yml or release.toml file")

	SetStyledHelp(cmd)

	return cmd
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// ConfigureLogging applies the command flags on top of the logging section
// of the project file. It must run before component loggers are created.
func ConfigureLogging(opts CommandOptions, base logging.Config) {
	cfg := base
	if opts.Verbose {
		cfg.Level = "debug"
		cfg.Format.StructuredToStderr = logging.StderrAlways
	}
	if opts.JSONOutput {
		cfg.Format.Preset = "json"
	}
	logging.Configure(cfg)
}

// GetLogger returns the component logger, forced to debug level by --verbose
// even when RELEASE_LOG_LEVEL says otherwise.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	entry := logging.NewLogger(component)

	opts := GetOptions(cmd)
	if opts.Verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
		logging.EnableStderr(entry)
	}
	if opts.JSONOutput {
		entry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return entry
}
