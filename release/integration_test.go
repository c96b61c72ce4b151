package release

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/release/build"
	"github.com/grovetools/release/command"
	"github.com/grovetools/release/config"
	"github.com/grovetools/release/errors"
	"github.com/grovetools/release/git"
	"github.com/grovetools/release/logging"
	"github.com/grovetools/release/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupSiteRepo returns a clone whose master is in sync with its remote and
// which has a local release branch carrying an older published page.
func setupSiteRepo(t *testing.T) string {
	t.Helper()
	dir := testutil.InitClonedRepo(t, t.TempDir())

	testutil.RunGitCommand(t, dir, "switch", "-c", "release")
	testutil.CreateCommit(t, dir, "archive/old.html", "historic")
	testutil.RunGitCommand(t, dir, "switch", "master")
	return dir
}

func newRealOrchestrator(t *testing.T, dir, buildBody string) (*Orchestrator, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.WorkDir = dir
	cfg.Build.Command = testutil.WriteStubTool(t, t.TempDir(), "make", buildBody)
	require.NoError(t, cfg.ResolvePaths())
	require.NoError(t, cfg.Validate())

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	entry := logrus.NewEntry(logger)

	runner := command.NewRunner(command.NewSafeBuilder(), entry).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})
	vcs := git.NewCLIClient(dir, runner, entry)
	tool := build.NewTool(dir, cfg.Build.Command, cfg.Build.Args, cfg.Build.OutputVar, runner, entry)

	o, err := New(cfg, vcs, tool,
		WithPrettyLogger(logging.NewPrettyLogger().WithWriter(&bytes.Buffer{})),
		WithLogger(entry),
		WithTempDirParent(t.TempDir()),
	)
	require.NoError(t, err)
	return o, cfg
}

func TestRelease_EndToEnd(t *testing.T) {
	testutil.RequireGit(t)
	testutil.RequireSh(t)

	dir := setupSiteRepo(t)
	head := testutil.GitOutput(t, dir, "rev-parse", "master")

	o, _ := newRealOrchestrator(t, dir, testutil.StubSiteBuilder("OUTPUT_DIR", map[string]string{
		"index.html":       "home",
		"posts/first.html": "first",
	}))

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, head, result.Revision)
	assert.ElementsMatch(t, []string{"index.html", "posts/first.html"}, result.Staged)

	assert.Equal(t, "release", testutil.GitOutput(t, dir, "rev-parse", "--abbrev-ref", "HEAD"))
	assert.Equal(t, "Updating release from "+head+".", testutil.GitOutput(t, dir, "log", "-1", "--format=%s"))

	tracked := testutil.GitOutput(t, dir, "ls-files")
	assert.Contains(t, tracked, "archive/old.html")
	assert.Contains(t, tracked, "posts/first.html")

	data, err := os.ReadFile(filepath.Join(dir, "archive", "old.html"))
	require.NoError(t, err)
	assert.Equal(t, "historic", string(data))

	// master is left untouched
	assert.Equal(t, head, testutil.GitOutput(t, dir, "rev-parse", "master"))
}

func TestRelease_DirtyWorkingCopy(t *testing.T) {
	testutil.RequireGit(t)
	testutil.RequireSh(t)

	dir := setupSiteRepo(t)
	testutil.WriteFile(t, dir, "draft.md", "wip")

	o, _ := newRealOrchestrator(t, dir, testutil.StubSiteBuilder("OUTPUT_DIR", map[string]string{"index.html": "home"}))

	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeGitDirty))
	assert.Contains(t, errors.Reason(err), "? draft.md")
	assert.Equal(t, "master", testutil.GitOutput(t, dir, "rev-parse", "--abbrev-ref", "HEAD"))
}

func TestRelease_BuildFailureStaysOnPrimary(t *testing.T) {
	testutil.RequireGit(t)
	testutil.RequireSh(t)

	dir := setupSiteRepo(t)
	o, _ := newRealOrchestrator(t, dir, "exit 3")

	result, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StepBuild, result.Failure.Step)
	code, ok := errors.ExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)

	assert.Equal(t, "master", testutil.GitOutput(t, dir, "rev-parse", "--abbrev-ref", "HEAD"))
	_, statErr := os.Stat(result.TempDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRelease_MissingReleaseBranch(t *testing.T) {
	testutil.RequireGit(t)
	testutil.RequireSh(t)

	dir := testutil.InitClonedRepo(t, t.TempDir())
	o, _ := newRealOrchestrator(t, dir, testutil.StubSiteBuilder("OUTPUT_DIR", map[string]string{"index.html": "home"}))

	result, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StepSwitchRelease, result.Failure.Step)
	assert.Equal(t, []StepID{StepSwitchPrimary, StepRevision, StepTempDir, StepBuild}, result.Completed)
}
