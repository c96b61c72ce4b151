package git

import (
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v6"
	"github.com/grovetools/release/errors"
	"github.com/sirupsen/logrus"
)

// Preflight checks that gitDir exists and opens as a repository. It returns
// the short name of the checked out branch, or "" for a detached or unborn HEAD.
func Preflight(gitDir string, logger *logrus.Entry) (string, error) {
	info, err := os.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.GitDirMissing(gitDir)
		}
		return "", errors.GitDirInvalid(gitDir, err)
	}

	// A .git file is a gitlink (linked worktree or submodule); open its parent
	// so the link is followed.
	openPath := gitDir
	if !info.IsDir() {
		openPath = filepath.Dir(gitDir)
	}

	repo, err := gogit.PlainOpen(openPath)
	if err != nil {
		return "", errors.GitDirInvalid(gitDir, err)
	}

	head, err := repo.Head()
	if err != nil {
		if logger != nil {
			logger.WithError(err).Debug("HEAD does not resolve")
		}
		return "", nil
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}
