// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Author overrides the commit identity for a single commit. Empty
// fields fall back to git's own configuration.
type Author struct {
	Name  string
	Email string
}

// IsWorkTree reports whether the repository directory itself is the
// top of a git working copy. A content directory nested inside some
// unrelated repository does not count: papersync never commits into a
// parent project.
func (r *Repository) IsWorkTree() bool {
	info, err := os.Stat(filepath.Join(r.dir, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

// Init creates a working copy whose initial branch is branch. Callers
// check IsWorkTree first; running Init on an existing repository is
// safe (git reinitializes without touching history) but unnecessary.
func (r *Repository) Init(ctx context.Context, branch string) error {
	args := []string{"init"}
	if branch != "" {
		args = append(args, "--initial-branch", branch)
	}
	_, err := r.Run(ctx, args...)
	return err
}

// RemoteURL returns the URL configured for the named remote. found is
// false when no such remote exists; err is reserved for git failures
// other than "no such remote".
func (r *Repository) RemoteURL(ctx context.Context, name string) (url string, found bool, err error) {
	output, err := r.Run(ctx, "remote", "get-url", name)
	if err != nil {
		// "git remote get-url" exits 2 for a missing remote.
		if ExitCode(err) == 2 || strings.Contains(err.Error(), "No such remote") {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(output), true, nil
}

// AddRemote configures a new remote. Fails if the name is taken.
func (r *Repository) AddRemote(ctx context.Context, name, url string) error {
	_, err := r.Run(ctx, "remote", "add", name, url)
	return err
}

// StageAll stages every change under the working copy, including
// deletions.
func (r *Repository) StageAll(ctx context.Context) error {
	_, err := r.Run(ctx, "add", "-A")
	return err
}

// HasStagedChanges reports whether the index differs from HEAD (or from
// the empty tree on an unborn branch).
func (r *Repository) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := r.Run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	if ExitCode(err) == 1 {
		return true, nil
	}
	return false, err
}

// Commit records the index with message.
func (r *Repository) Commit(ctx context.Context, message string, author Author) error {
	var args []string
	if author.Name != "" {
		args = append(args, "-c", "user.name="+author.Name)
	}
	if author.Email != "" {
		args = append(args, "-c", "user.email="+author.Email)
	}
	args = append(args, "commit", "--quiet", "-m", message)
	_, err := r.Run(ctx, args...)
	return err
}

// Push sends refspec to the named remote and sets it as upstream.
// Returns git's combined diagnostic output on failure through the
// *CommandError.
func (r *Repository) Push(ctx context.Context, remote, refspec string) error {
	if remote == "" || refspec == "" {
		return fmt.Errorf("git push: remote and refspec are required")
	}
	_, err := r.Run(ctx, "push", "--porcelain", "-u", remote, refspec)
	return err
}

// Head returns the commit HEAD points at, or "" on an unborn branch.
func (r *Repository) Head(ctx context.Context) (string, error) {
	output, err := r.Run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		if ExitCode(err) == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(output), nil
}
