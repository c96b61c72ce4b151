package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireGit skips the test if git is not available
func RequireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// RequireSh skips the test if a POSIX shell is not available
func RequireSh(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// InitGitRepo initializes a git repository in dir with an initial commit on
// the master branch
func InitGitRepo(t *testing.T, dir string) {
	t.Helper()

	RunGitCommand(t, dir, "init")
	ConfigureUser(t, dir)

	// Create initial commit
	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test Site\n"), 0600))
	RunGitCommand(t, dir, "add", ".")
	RunGitCommand(t, dir, "commit", "-m", "Initial commit")

	// Ensure the branch is named master regardless of init.defaultBranch
	RunGitCommand(t, dir, "branch", "-M", "master")
}

// ConfigureUser sets a local identity so commits work on bare CI machines
func ConfigureUser(t *testing.T, dir string) {
	t.Helper()

	RunGitCommand(t, dir, "config", "user.name", "Test User")
	RunGitCommand(t, dir, "config", "user.email", "test@example.com")
	RunGitCommand(t, dir, "config", "commit.gpgsign", "false")
}

// InitClonedRepo creates a bare remote and a clone of it whose master
// branch tracks origin/master. It returns the clone's path.
func InitClonedRepo(t *testing.T, baseDir string) string {
	t.Helper()

	seedDir := filepath.Join(baseDir, "seed")
	remoteDir := filepath.Join(baseDir, "remote.git")
	localDir := filepath.Join(baseDir, "local")

	require.NoError(t, os.Mkdir(seedDir, 0755))
	InitGitRepo(t, seedDir)
	RunGitCommand(t, baseDir, "clone", "--bare", "seed", "remote.git")
	RunGitCommand(t, baseDir, "clone", "--branch", "master", remoteDir, "local")
	ConfigureUser(t, localDir)

	return localDir
}

// CreateBranch creates a branch at the current HEAD without switching to it
func CreateBranch(t *testing.T, dir, branch string) {
	t.Helper()

	RunGitCommand(t, dir, "branch", branch)
}

// RunGitCommand runs a git command in the given directory
func RunGitCommand(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s failed with output: %s", strings.Join(args, " "), string(output))
}

// GitOutput runs a git command and returns its trimmed stdout
func GitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	require.NoError(t, err, "git %s failed", strings.Join(args, " "))
	return strings.TrimSpace(string(output))
}

// CreateCommit creates a file and commits it
func CreateCommit(t *testing.T, dir, filename, content string) {
	t.Helper()

	WriteFile(t, dir, filename, content)
	RunGitCommand(t, dir, "add", filename)
	RunGitCommand(t, dir, "commit", "-m", "Add "+filename)
}

// WriteFile writes content to dir/name, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// WriteStubTool writes an executable shell script named name into dir and
// returns its absolute path
func WriteStubTool(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\nset -e\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// StubSiteBuilder returns a stub build tool body that reads VAR=<dir> from
// its arguments and writes the given files (path -> content) into <dir>
func StubSiteBuilder(outputVar string, files map[string]string) string {
	var b strings.Builder
	b.WriteString("out=\n")
	b.WriteString("for arg in \"$@\"; do\n")
	b.WriteString("  case \"$arg\" in " + outputVar + "=*) out=\"${arg#" + outputVar + "=}\" ;; esac\n")
	b.WriteString("done\n")
	b.WriteString("test -n \"$out\"\n")
	for name, content := range files {
		b.WriteString("mkdir -p \"$out/$(dirname '" + name + "')\"\n")
		b.WriteString("printf '%s' '" + content + "' > \"$out/" + name + "\"\n")
	}
	return b.String()
}
