package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/release/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	sinks     []io.Closer
	loggersMu sync.Mutex
	settings  Config
	stderrTTY = func() bool {
		return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	}
)

// Configure sets the configuration used by loggers created afterwards.
// Loggers already handed out are dropped from the cache but keep working.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	settings = cfg
	loggers = make(map[string]*logrus.Entry)
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logCfg := settings
	logger := logrus.New()

	logger.SetLevel(logCfg.level())
	logger.SetReportCaller(logCfg.reportCaller())

	// Configure Formatter
	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	// Configure Output Sinks
	var writers []io.Writer

	// The file sink is opt-in: a default log file inside the working copy
	// would make it unclean.
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		if logFilePath, err := pathutil.Expand(logCfg.File.Path); err != nil {
			logger.Warnf("Invalid log file path %s: %v", logCfg.File.Path, err)
		} else if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
			logger.Warnf("Failed to create log directory %s: %v", filepath.Dir(logFilePath), err)
		} else if file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err != nil {
			logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
		} else {
			sinks = append(sinks, file)
			writers = append(writers, file)
		}
	}

	if shouldLogToStderr(logCfg, logger.GetLevel()) {
		writers = append(writers, GetGlobalOutput())
	}

	// Configure the output based on the number of writers
	switch len(writers) {
	case 0:
		// Intentional in auto mode on an interactive terminal: the pretty
		// progress output is what the user reads.
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// EnableStderr makes entry write to the global stderr writer, in addition to
// any file sink, regardless of the auto mode decision. Used by --verbose.
func EnableStderr(entry *logrus.Entry) {
	out := entry.Logger.Out
	if out == io.Discard {
		entry.Logger.SetOutput(GetGlobalOutput())
		return
	}
	if out == GetGlobalOutput() {
		return
	}
	entry.Logger.SetOutput(io.MultiWriter(out, GetGlobalOutput()))
}

// shouldLogToStderr decides whether structured logs reach stderr.
func shouldLogToStderr(cfg Config, level logrus.Level) bool {
	switch cfg.Format.stderrMode() {
	case StderrAlways:
		return true
	case StderrNever:
		return false
	default:
		isDebug := os.Getenv("RELEASE_DEBUG") == "1" || level >= logrus.DebugLevel
		return isDebug || !stderrTTY()
	}
}

// Close closes every log file opened by NewLogger and drops the cached
// loggers, so later calls start over. Call it once before the process exits.
func Close() error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	var firstErr error
	for _, sink := range sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	sinks = nil
	loggers = make(map[string]*logrus.Entry)
	return firstErr
}
