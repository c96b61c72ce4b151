package logging

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// resetLoggers restores the package state after a test touched it.
func resetLoggers(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		Close()
		Configure(Config{})
		SetGlobalOutput(os.Stderr)
	})
}

func TestNewLogger(t *testing.T) {
	resetLoggers(t)

	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}

	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}

	if again := NewLogger("test-component"); again != logger {
		t.Error("Expected the same entry for the same component")
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&TextFormatter{Config: FormatConfig{}})

	entry := logger.WithField("component", "test")
	entry.Info("Test message")

	output := buf.String()

	if !strings.Contains(output, "[INFO]") {
		t.Errorf("Expected output to contain [INFO], got: %s", output)
	}
	if !strings.Contains(output, "[test]") {
		t.Errorf("Expected output to contain [test], got: %s", output)
	}
	if !strings.Contains(output, "Test message") {
		t.Errorf("Expected output to contain 'Test message', got: %s", output)
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string // Parts that should be in the output
		notWant []string // Parts that should NOT be in the output
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "test message",
				Data: logrus.Fields{
					"component": "release",
					"step":      "build",
				},
			},
			want:    []string{"[INFO]", "[release]", "test message", "step=build"},
			notWant: []string{},
		},
		{
			name: "simple format",
			config: FormatConfig{
				DisableTimestamp: true,
				DisableComponent: true,
			},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "warning message",
				Data: logrus.Fields{
					"component": "release",
				},
			},
			want:    []string{"[WARN]", "warning message"},
			notWant: []string{"[release]"},
		},
		{
			name:   "caller information with function name",
			config: FormatConfig{},
			entry: func() *logrus.Entry {
				logger := logrus.New()
				logger.SetReportCaller(true)
				return &logrus.Entry{
					Logger:  logger,
					Level:   logrus.InfoLevel,
					Message: "test message with caller",
					Data: logrus.Fields{
						"component": "release",
					},
					Caller: &runtime.Frame{
						File:     "/path/to/file.go",
						Line:     42,
						Function: "github.com/example/package.TestFunction",
					},
				}
			}(),
			want:    []string{"[INFO]", "[release]", "test message with caller", "[file.go:42 package.TestFunction]"},
			notWant: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TextFormatter{Config: tt.config}

			output, err := formatter.Format(tt.entry)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			outputStr := string(output)

			for _, want := range tt.want {
				if !strings.Contains(outputStr, want) {
					t.Errorf("Expected output to contain '%s', got: %s", want, outputStr)
				}
			}

			for _, notWant := range tt.notWant {
				if strings.Contains(outputStr, notWant) {
					t.Errorf("Expected output NOT to contain '%s', got: %s", notWant, outputStr)
				}
			}
		})
	}
}

func TestTextFormatterFieldOrder(t *testing.T) {
	formatter := &TextFormatter{Config: FormatConfig{DisableTimestamp: true, DisableComponent: true}}
	entry := &logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"zeta": 1, "alpha": 2, "mid": 3},
	}

	output, err := formatter.Format(entry)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := string(output); got != "[INFO] m alpha=2 mid=3 zeta=1\n" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	resetLoggers(t)
	t.Setenv("RELEASE_LOG_LEVEL", "debug")
	t.Setenv("RELEASE_LOG_CALLER", "true")
	Configure(Config{})

	logger := NewLogger("env-test")

	if logger.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level from env, got %v", logger.Logger.GetLevel())
	}
	if !logger.Logger.ReportCaller {
		t.Error("Expected caller reporting from env")
	}
}

func TestConfigurePresets(t *testing.T) {
	resetLoggers(t)

	Configure(Config{Level: "warn", Format: FormatConfig{Preset: "json"}})
	logger := NewLogger("json-test")
	if logger.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("Expected warn level, got %v", logger.Logger.GetLevel())
	}
	if _, ok := logger.Logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", logger.Logger.Formatter)
	}

	Configure(Config{Level: "not-a-level"})
	logger = NewLogger("json-test")
	if logger.Logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected fallback to info, got %v", logger.Logger.GetLevel())
	}
}

func TestStructuredToStderr(t *testing.T) {
	resetLoggers(t)
	var buf bytes.Buffer
	SetGlobalOutput(&buf)

	Configure(Config{Format: FormatConfig{StructuredToStderr: "never"}})
	NewLogger("quiet").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no stderr output, got %q", buf.String())
	}

	Configure(Config{Format: FormatConfig{StructuredToStderr: "always"}})
	NewLogger("loud").Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected stderr output, got %q", buf.String())
	}
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("RELEASE_LOG_LEVEL", "error")
	t.Setenv("RELEASE_LOG_CALLER", "true")

	cfg := Config{Level: "debug"}
	if cfg.level() != logrus.ErrorLevel {
		t.Errorf("Expected RELEASE_LOG_LEVEL to win, got %v", cfg.level())
	}
	if !cfg.reportCaller() {
		t.Error("Expected RELEASE_LOG_CALLER=true to enable caller reporting")
	}

	if got := (FormatConfig{StructuredToStderr: "sometimes"}).stderrMode(); got != StderrAuto {
		t.Errorf("Expected unknown mode to fall back to auto, got %q", got)
	}
}

func TestSetGlobalOutputReachesExistingLoggers(t *testing.T) {
	resetLoggers(t)
	Configure(Config{Format: FormatConfig{StructuredToStderr: StderrAlways}})
	logger := NewLogger("early")

	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	logger.Info("after swap")
	if !strings.Contains(buf.String(), "after swap") {
		t.Errorf("Expected entry in swapped writer, got %q", buf.String())
	}
}

func TestShouldLogToStderrAuto(t *testing.T) {
	orig := stderrTTY
	t.Cleanup(func() { stderrTTY = orig })

	stderrTTY = func() bool { return true }
	if shouldLogToStderr(Config{}, logrus.InfoLevel) {
		t.Error("Interactive info logging should stay off stderr")
	}
	if !shouldLogToStderr(Config{}, logrus.DebugLevel) {
		t.Error("Debug logging should reach stderr")
	}

	stderrTTY = func() bool { return false }
	if !shouldLogToStderr(Config{}, logrus.InfoLevel) {
		t.Error("Non-interactive logging should reach stderr")
	}
}

func TestEnableStderr(t *testing.T) {
	resetLoggers(t)
	var buf bytes.Buffer
	SetGlobalOutput(&buf)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("component", "verbose")

	EnableStderr(entry)
	entry.Info("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("Expected output after EnableStderr, got %q", buf.String())
	}
}

func TestFileSink(t *testing.T) {
	resetLoggers(t)
	path := filepath.Join(t.TempDir(), "logs", "release.log")

	Configure(Config{
		File:   FileSinkConfig{Enabled: true, Path: path},
		Format: FormatConfig{StructuredToStderr: "never"},
	})
	NewLogger("file-test").Info("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("Expected message in log file, got %q", string(data))
	}

	if err := Close(); err != nil {
		t.Errorf("Close() returned %v", err)
	}
	if err := Close(); err != nil {
		t.Errorf("second Close() returned %v", err)
	}
}

func TestFileSinkExpandsHome(t *testing.T) {
	resetLoggers(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	Configure(Config{
		File:   FileSinkConfig{Enabled: true, Path: "~/logs/release.log"},
		Format: FormatConfig{StructuredToStderr: "never"},
	})
	first := NewLogger("home-test")
	first.Info("in home")
	if err := Close(); err != nil {
		t.Fatalf("Close() returned %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "logs", "release.log"))
	if err != nil {
		t.Fatalf("Expected log file under HOME: %v", err)
	}
	if !strings.Contains(string(data), "in home") {
		t.Errorf("Expected message in log file, got %q", string(data))
	}
	if NewLogger("home-test") == first {
		t.Error("Close() should drop cached loggers")
	}
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	pretty := NewPrettyLogger().WithWriter(&buf)

	pretty.Step("Switch to the `master` branch…")
	pretty.Item("adding index.html")
	pretty.Field("Revision", "abc123")

	out := buf.String()
	for _, want := range []string{"\n** Switch to the `master` branch…\n", " * adding index.html\n", "Revision", "abc123"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestContextWriter(t *testing.T) {
	if GetWriter(context.Background()) != os.Stdout {
		t.Error("Expected stdout fallback")
	}

	var buf bytes.Buffer
	ctx := WithWriter(context.Background(), &buf)
	if GetWriter(ctx) != &buf {
		t.Error("Expected writer from context")
	}
}
