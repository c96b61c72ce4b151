// Package fsutil copies build output over a working copy.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/patternmatcher"
)

// Filter decides which files of a build output are left alone. A nil
// Filter excludes nothing.
type Filter struct {
	pm *patternmatcher.PatternMatcher
}

// NewFilter compiles .dockerignore-style patterns (including "!" exceptions).
// An empty list yields a nil Filter.
func NewFilter(patterns []string) (*Filter, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	return &Filter{pm: pm}, nil
}

// Excluded reports whether rel, a path relative to the output root, matches
// the filter directly or through one of its parent directories.
func (f *Filter) Excluded(rel string) (bool, error) {
	if f == nil || f.pm == nil {
		return false, nil
	}
	return f.pm.MatchesOrParentMatches(rel)
}

// walkFiles calls fn for every file under root in lexical order. Symlinks
// are resolved; symlinks to directories are not descended into.
func walkFiles(root string, filter *Filter, fn func(rel, path string, info fs.FileInfo) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		excluded, err := filter.Excluded(rel)
		if err != nil {
			return err
		}
		if excluded {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return fn(rel, path, info)
	})
}

// ListFiles returns the paths, relative to root, of every file under root.
func ListFiles(root string, filter *Filter) ([]string, error) {
	var files []string
	err := walkFiles(root, filter, func(rel, _ string, _ fs.FileInfo) error {
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files under %s: %w", root, err)
	}
	return files, nil
}

// Overlay copies every file under src into dst, creating directories as
// needed and overwriting files that already exist. Files present in dst but
// absent from src are never removed. It returns the relative paths copied.
func Overlay(src, dst string, filter *Filter) ([]string, error) {
	var copied []string
	err := walkFiles(src, filter, func(rel, path string, info fs.FileInfo) error {
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := copyFile(path, target, info); err != nil {
			return err
		}
		copied = append(copied, rel)
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return copied, nil
}

// copyFile copies content, permission bits and modification time.
func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// A symlink at the destination is replaced, not written through.
	if fi, err := os.Lstat(dst); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
