package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveDir expands path like Expand, resolves symlinks and checks that the
// result is an existing directory. On case-insensitive filesystems the
// on-disk spelling of every component is restored so the path matches what
// git reports.
func ResolveDir(path string) (string, error) {
	abs, err := Expand(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", abs, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", resolved)
	}

	if runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		return resolved, nil
	}
	return restoreCase(resolved), nil
}

// restoreCase walks each component of an absolute path and replaces it with
// the name the directory listing uses.
func restoreCase(path string) string {
	volume := filepath.VolumeName(path)
	result := volume + string(filepath.Separator)

	for _, part := range strings.Split(strings.TrimPrefix(path, volume), string(filepath.Separator)) {
		if part == "" {
			continue
		}
		entries, err := os.ReadDir(result)
		if err != nil {
			result = filepath.Join(result, part)
			continue
		}
		name := part
		for _, entry := range entries {
			if strings.EqualFold(entry.Name(), part) {
				name = entry.Name()
				break
			}
		}
		result = filepath.Join(result, name)
	}
	return result
}
