package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/release/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are the project file names looked up in the working copy, in order.
var configNames = []string{
	"release.yml",
	"release.yaml",
	"release.toml",
}

// knownKeys are the top-level keys decoded into Config itself; anything
// else in a TOML file is kept in Extensions.
var knownKeys = map[string]bool{
	"git_dir":        true,
	"primary_branch": true,
	"release_branch": true,
	"check_git":      true,
	"build":          true,
	"commit_message": true,
	"exclude":        true,
	"timeout":        true,
}

// FindConfigFile returns the first project file present directly in workDir.
func FindConfigFile(workDir string) (string, error) {
	for _, name := range configNames {
		path := filepath.Join(workDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(workDir).WithDetail("searchPath", workDir)
}

// Load reads the project file at path and applies it over base.
func Load(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}

	cfg, err := LoadFromBytes(data, format, base)
	if err != nil {
		if groveErr, ok := errors.As(err); ok {
			groveErr.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes parses configuration in the given format ("yaml" or "toml")
// over a copy of base. A nil base means Default().
func LoadFromBytes(data []byte, format string, base *Config) (*Config, error) {
	// Expand environment variables
	expanded := []byte(expandEnvVars(string(data)))

	cfg := Default()
	if base != nil {
		copied := *base
		copied.Exclude = append([]string(nil), base.Exclude...)
		copied.Build.Args = append([]string(nil), base.Build.Args...)
		if base.Build.Env != nil {
			copied.Build.Env = make(map[string]string, len(base.Build.Env))
			for key, value := range base.Build.Env {
				copied.Build.Env[key] = value
			}
		}
		cfg = &copied
	}
	workDir := cfg.WorkDir

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	case "toml":
		if err := toml.Unmarshal(expanded, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		var raw map[string]interface{}
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		for key, value := range raw {
			if knownKeys[key] {
				continue
			}
			if cfg.Extensions == nil {
				cfg.Extensions = make(map[string]interface{})
			}
			cfg.Extensions[key] = value
		}
	default:
		return nil, errors.ConfigInvalid("unknown config format " + format)
	}

	cfg.WorkDir = workDir
	return cfg, nil
}

// LoadFrom builds the configuration for the working copy at workDir, which
// must be absolute: defaults, then the project file if one exists. Paths are
// resolved but the result is not validated.
func LoadFrom(workDir string, logger *logrus.Entry) (*Config, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	cfg := Default()
	cfg.WorkDir = filepath.Clean(workDir)

	path, err := FindConfigFile(cfg.WorkDir)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeConfigNotFound) {
			return nil, err
		}
		logger.WithField("dir", cfg.WorkDir).Debug("No project configuration, using defaults")
	} else {
		logger.WithField("path", path).Debug("Loading project configuration")
		cfg, err = Load(path, cfg)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.ResolvePaths(); err != nil {
		return nil, err
	}

	if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(cfg); err == nil {
			logger.Debugf("Effective configuration:\n%s", string(data))
		}
	}

	return cfg, nil
}

// ResolvePaths makes GitDir absolute, defaulting it to <WorkDir>/.git.
func (c *Config) ResolvePaths() error {
	if c.WorkDir == "" || !filepath.IsAbs(c.WorkDir) {
		return errors.ConfigInvalid("work dir must be an absolute path").
			WithDetail("workDir", c.WorkDir)
	}
	switch {
	case c.GitDir == "":
		c.GitDir = filepath.Join(c.WorkDir, ".git")
	case !filepath.IsAbs(c.GitDir):
		c.GitDir = filepath.Join(c.WorkDir, c.GitDir)
	}
	c.GitDir = filepath.Clean(c.GitDir)
	return nil
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value, ok := os.LookupEnv(varName); ok && value != "" {
			return value
		}
		return defaultValue
	})
}
