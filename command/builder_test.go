package command

import (
	"context"
	"testing"
	"time"
)

func TestValidateGitRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid branch", "master", false},
		{"valid with slash", "feature/add-button", false},
		{"valid with hyphen", "fix-bug", false},
		{"valid with underscore", "my_branch", false},
		{"valid with dots", "v1.2.3", false},
		{"release branch", "release", false},
		{"empty ref", "", true},
		{"command injection", "master; rm -rf /", true},
		{"spaces", "my branch", true},
		{"option lookalike", "-f", true},
		{"range", "master..release", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGitRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateGitRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain file", "index.html", false},
		{"nested file", "posts/2024/hello.html", false},
		{"double dot inside name", "notes..txt", false},
		{"ampersand is fine without a shell", "a&b.html", false},
		{"empty path", "", true},
		{"absolute path", "/etc/passwd", true},
		{"option lookalike", "-rf", true},
		{"directory traversal", "../outside.txt", true},
		{"nested traversal", "a/../../b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRelativePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRelativePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVarName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "OUTPUT_DIR", false},
		{"lowercase", "out", false},
		{"empty", "", true},
		{"starts with digit", "1DIR", true},
		{"contains equals", "A=B", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateVarName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateVarName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	t.Run("valid command", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "echo", "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer cmd.Release()
		if cmd.name != "echo" {
			t.Errorf("expected name 'echo', got %s", cmd.name)
		}
		if cmd.String() != "echo hello" {
			t.Errorf("unexpected command line %q", cmd.String())
		}
		if cmd.timeout != DefaultTimeout {
			t.Errorf("expected default timeout %v, got %v", DefaultTimeout, cmd.timeout)
		}
	})

	t.Run("empty command name", func(t *testing.T) {
		_, err := sb.Build(ctx, "")
		if err == nil {
			t.Error("expected error for empty command name")
		}
	})
}

func TestCommand_WithTimeout(t *testing.T) {
	sb := NewSafeBuilder()
	cmd, err := sb.Build(context.Background(), "echo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cmd.Release()

	cmd.WithTimeout(5 * time.Second)
	if cmd.timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cmd.timeout)
	}

	cmd.WithTimeout(3 * MaxTimeout)
	if cmd.timeout != MaxTimeout {
		t.Errorf("expected timeout to be capped at %v, got %v", MaxTimeout, cmd.timeout)
	}
}

func TestSafeBuilder_WithDefaultTimeout(t *testing.T) {
	sb := NewSafeBuilder().WithDefaultTimeout(time.Second)
	if sb.defaultTimeout != time.Second {
		t.Errorf("expected 1s, got %v", sb.defaultTimeout)
	}
	sb.WithDefaultTimeout(0)
	if sb.defaultTimeout != DefaultTimeout {
		t.Errorf("non-positive timeout should reset to default, got %v", sb.defaultTimeout)
	}
}

func TestSafeBuilder_Validate(t *testing.T) {
	sb := NewSafeBuilder()

	if err := sb.Validate("gitRef", "release"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := sb.Validate("relativePath", "../x"); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if err := sb.Validate("unknown", "x"); err == nil {
		t.Error("expected error for unknown validator")
	}
}
