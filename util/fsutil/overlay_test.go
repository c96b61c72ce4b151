package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(data)
}

func TestOverlay_KeepsFilesMissingFromSource(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, src, "index.html", "new index")
	writeFile(t, src, "posts/first.html", "first")

	writeFile(t, dst, "index.html", "old index")
	writeFile(t, dst, "archive/2019.html", "historic")
	writeFile(t, dst, "posts/removed.html", "still here")

	copied, err := Overlay(src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", filepath.Join("posts", "first.html")}, copied)

	assert.Equal(t, "new index", readFile(t, dst, "index.html"))
	assert.Equal(t, "first", readFile(t, dst, "posts/first.html"))
	assert.Equal(t, "historic", readFile(t, dst, "archive/2019.html"))
	assert.Equal(t, "still here", readFile(t, dst, "posts/removed.html"))
}

func TestOverlay_PreservesModeAndTime(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, src, "run.sh", "#!/bin/sh\n")
	require.NoError(t, os.Chmod(filepath.Join(src, "run.sh"), 0755))
	stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(src, "run.sh"), stamp, stamp))

	_, err := Overlay(src, dst, nil)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(stamp))
}

func TestOverlay_EmptySource(t *testing.T) {
	dst := t.TempDir()
	writeFile(t, dst, "keep.txt", "keep")

	copied, err := Overlay(t.TempDir(), dst, nil)
	require.NoError(t, err)
	assert.Empty(t, copied)
	assert.Equal(t, "keep", readFile(t, dst, "keep.txt"))
}

func TestOverlay_MissingSource(t *testing.T) {
	_, err := Overlay(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.html", "b")
	writeFile(t, root, "a/z.css", "z")
	writeFile(t, root, "a/b/c.js", "c")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	files, err := ListFiles(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("a", "b", "c.js"),
		filepath.Join("a", "z.css"),
		"b.html",
	}, files)
}

func TestFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "i")
	writeFile(t, root, ".DS_Store", "junk")
	writeFile(t, root, "drafts/wip.html", "wip")
	writeFile(t, root, "img/photo.jpg.tmp", "tmp")

	filter, err := NewFilter([]string{".DS_Store", "drafts", "**/*.tmp"})
	require.NoError(t, err)

	files, err := ListFiles(root, filter)
	require.NoError(t, err)
	assert.Contains(t, files, "index.html")
	assert.NotContains(t, files, ".DS_Store")
	assert.NotContains(t, files, filepath.Join("drafts", "wip.html"))
	assert.NotContains(t, files, filepath.Join("img", "photo.jpg.tmp"))

	dst := t.TempDir()
	copied, err := Overlay(root, dst, filter)
	require.NoError(t, err)
	assert.Equal(t, files, copied)
	_, err = os.Stat(filepath.Join(dst, ".DS_Store"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewFilter(t *testing.T) {
	filter, err := NewFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, filter)

	excluded, err := filter.Excluded("anything")
	require.NoError(t, err)
	assert.False(t, excluded)

	_, err = NewFilter([]string{"[unterminated"})
	assert.Error(t, err)
}

func TestOverlay_SymlinkedDirectoriesSkipped(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	outside := t.TempDir()

	writeFile(t, src, "index.html", "index")
	writeFile(t, outside, "assets/app.css", "body {}")
	writeFile(t, outside, "robots.txt", "User-agent: *")
	if err := os.Symlink(filepath.Join(outside, "assets"), filepath.Join(src, "assets")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(outside, "robots.txt"), filepath.Join(src, "robots.txt")))

	listed, err := ListFiles(src, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "robots.txt"}, listed)

	copied, err := Overlay(src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "robots.txt"}, copied)

	assert.NoDirExists(t, filepath.Join(dst, "assets"))
	info, err := os.Lstat(filepath.Join(dst, "robots.txt"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "symlinked file should be copied as content")
	assert.Equal(t, "User-agent: *", readFile(t, dst, "robots.txt"))
}
