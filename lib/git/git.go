// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to the git CLI for the working copy
// that holds a generated paper. All commands target a specific directory
// via the -C flag, which every Repository method injects.
//
// Failures come back as [*CommandError], which keeps the exit code and
// stderr verbatim so callers can classify the outcome (rejected push,
// unreachable remote, timeout) without re-running anything.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Repository represents a git working copy at a specific directory.
// There is no default directory: callers always say which working copy
// they mean.
type Repository struct {
	dir string
	env []string
}

// NewRepository returns a Repository targeting dir. Extra environment
// entries ("KEY=value") are appended to the process environment of every
// git invocation; tests use this to pin author identity and HOME.
func NewRepository(dir string, env ...string) *Repository {
	return &Repository{dir: dir, env: env}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// CommandError describes a git invocation that did not exit zero.
type CommandError struct {
	// Args are the git arguments after the -C prefix.
	Args []string

	// Dir is the repository directory the command targeted.
	Dir string

	// ExitCode is the process exit status, or -1 when git never ran
	// to completion (not installed, killed by context cancellation).
	ExitCode int

	// Stderr is git's diagnostic output, trimmed of surrounding space.
	Stderr string

	// Err is the underlying exec error.
	Err error
}

func (e *CommandError) Error() string {
	message := fmt.Sprintf("git %s in %s: %v", strings.Join(e.Args, " "), e.Dir, e.Err)
	if e.Stderr != "" {
		message += " (stderr: " + e.Stderr + ")"
	}
	return message
}

func (e *CommandError) Unwrap() error { return e.Err }

// Timeout reports whether the command was cut off by its context
// deadline.
func (e *CommandError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is captured separately and carried in the returned
// *CommandError on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := r.Command(ctx, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		commandError := &CommandError{
			Args:     args,
			Dir:      r.dir,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			commandError.ExitCode = exitError.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			commandError.Err = ctxErr
		}
		return "", commandError
	}
	return stdout.String(), nil
}

// Command returns an *exec.Cmd for a git command without running it.
// The -C flag targeting this repository is prepended and the
// repository's extra environment is applied.
func (r *Repository) Command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-C", r.dir}, args...)
	command := exec.CommandContext(ctx, "git", fullArgs...)
	if len(r.env) > 0 {
		command.Env = append(os.Environ(), r.env...)
	}
	return command
}

// ExitCode extracts the git exit status from err, or -1 if err is not a
// *CommandError.
func ExitCode(err error) int {
	var commandError *CommandError
	if errors.As(err, &commandError) {
		return commandError.ExitCode
	}
	return -1
}
