package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	DefaultPrimaryBranch = "master"
	DefaultReleaseBranch = "release"
	DefaultBuildCommand  = "make"
	DefaultOutputVar     = "OUTPUT_DIR"
	DefaultCommitMessage = "Updating release from %s."
	DefaultTimeout       = "10m"
)

// BuildConfig describes how the site is built.
type BuildConfig struct {
	// Command is the build tool, looked up on PATH unless it contains a slash.
	Command string `yaml:"command" toml:"command"`

	// Args are passed to Command before the output assignment.
	Args []string `yaml:"args,omitempty" toml:"args,omitempty"`

	// OutputVar is the variable receiving the output directory, as in
	// `make OUTPUT_DIR=/tmp/xyz`.
	OutputVar string `yaml:"output_var" toml:"output_var"`

	// Env is added to the build tool's environment, e.g. HUGO_ENV: production.
	Env map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`

	// Timeout bounds the build alone and overrides the general timeout,
	// which usually suits git but not a full site build.
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// Environ returns Env as sorted KEY=VALUE entries.
func (b BuildConfig) Environ() []string {
	env := make([]string, 0, len(b.Env))
	for key, value := range b.Env {
		env = append(env, key+"="+value)
	}
	sort.Strings(env)
	return env
}

// Config is everything a release run needs. It carries absolute paths so no
// operation has to consult the process working directory.
type Config struct {
	// WorkDir is the absolute path of the working copy. It is never read from
	// the project file, which lives inside it.
	WorkDir string `yaml:"-" toml:"-"`

	// GitDir is the version-control metadata directory, <WorkDir>/.git by default.
	GitDir string `yaml:"git_dir,omitempty" toml:"git_dir,omitempty"`

	PrimaryBranch string `yaml:"primary_branch" toml:"primary_branch"`
	ReleaseBranch string `yaml:"release_branch" toml:"release_branch"`

	// CheckGit requires a clean working copy before anything is changed.
	CheckGit bool `yaml:"check_git" toml:"check_git"`

	Build BuildConfig `yaml:"build" toml:"build"`

	// CommitMessage is a format string with a single %s for the revision.
	CommitMessage string `yaml:"commit_message" toml:"commit_message"`

	// Exclude lists patterns of build output that is neither copied nor staged.
	Exclude []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`

	// Timeout bounds every external command, e.g. "10m".
	Timeout string `yaml:"timeout" toml:"timeout"`

	// Extensions holds every other top-level section, such as `logging`.
	Extensions map[string]interface{} `yaml:",inline" toml:"-"`
}

// Default returns a Config with every default applied and no paths set.
func Default() *Config {
	return &Config{
		PrimaryBranch: DefaultPrimaryBranch,
		ReleaseBranch: DefaultReleaseBranch,
		CheckGit:      true,
		Build: BuildConfig{
			Command:   DefaultBuildCommand,
			OutputVar: DefaultOutputVar,
		},
		CommitMessage: DefaultCommitMessage,
		Timeout:       DefaultTimeout,
	}
}

// CommandTimeout returns the parsed Timeout. Validate guarantees it parses.
func (c *Config) CommandTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// BuildTimeout returns the parsed Build.Timeout, or CommandTimeout when it
// is not set.
func (c *Config) BuildTimeout() time.Duration {
	if c.Build.Timeout == "" {
		return c.CommandTimeout()
	}
	d, err := time.ParseDuration(c.Build.Timeout)
	if err != nil || d <= 0 {
		return c.CommandTimeout()
	}
	return d
}

// FormatCommitMessage renders the release commit message for revision.
func (c *Config) FormatCommitMessage(revision string) string {
	return fmt.Sprintf(c.CommitMessage, revision)
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded project file into the provided target struct. The target must be a
// pointer. A missing section leaves the target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
