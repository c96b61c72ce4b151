package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Stderr modes accepted by FormatConfig.StructuredToStderr.
const (
	StderrAuto   = "auto"
	StderrAlways = "always"
	StderrNever  = "never"
)

// Config is the `logging` section of release.yml (or release.toml). The
// release command reads it before any component logger is created.
type Config struct {
	// Level is the minimum level written. RELEASE_LOG_LEVEL wins over it;
	// unknown values fall back to info.
	Level string `yaml:"level"`

	// ReportCaller adds file and line to each entry. RELEASE_LOG_CALLER=true
	// turns it on as well.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig appends every entry to a file. The path may start with ~
// and may reference environment variables. Keep it out of the working copy,
// or ignored by it, so the clean-tree check still passes.
type FileSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FormatConfig shapes each entry.
type FormatConfig struct {
	// Preset is "default", "simple" (no timestamp or component) or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`

	// StructuredToStderr is one of the Stderr* modes. In auto mode entries
	// reach stderr only at debug level, with RELEASE_DEBUG=1, or when stderr
	// is not a terminal, so a release run from a shell shows just progress.
	StructuredToStderr string `yaml:"structured_to_stderr"`
}

func (c Config) level() logrus.Level {
	name := c.Level
	if env := os.Getenv("RELEASE_LOG_LEVEL"); env != "" {
		name = env
	}
	if name == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c Config) reportCaller() bool {
	return c.ReportCaller || os.Getenv("RELEASE_LOG_CALLER") == "true"
}

func (f FormatConfig) stderrMode() string {
	switch f.StructuredToStderr {
	case StderrAlways, StderrNever:
		return f.StructuredToStderr
	default:
		return StderrAuto
	}
}
