// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bureau-foundation/papersync/lib/clock"
	"github.com/bureau-foundation/papersync/lib/git"
	"github.com/bureau-foundation/papersync/lib/remote"
)

const (
	defaultRemoteName     = "overleaf"
	defaultBranch         = "master"
	defaultLocalTimeout   = 30 * time.Second
	defaultNetworkTimeout = 2 * time.Minute
)

// Config holds the settings for an Engine. Zero values take the
// defaults noted on each field.
type Config struct {
	// RemoteName is the git remote reserved for the host. Default
	// "overleaf".
	RemoteName string

	// Branch is the remote branch the host builds from. Default
	// "master".
	Branch string

	// LocalTimeout bounds each local git call. Default 30s.
	LocalTimeout time.Duration

	// NetworkTimeout bounds the push. Default 2m.
	NetworkTimeout time.Duration

	// Author overrides the commit identity. Empty fields use git's
	// configuration.
	Author git.Author

	// Env adds entries to every git process environment.
	Env []string

	// Clock stamps commit messages. Default clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine performs version-control synchronization for one snapshot at
// a time. It keeps no state between calls.
type Engine struct {
	remoteName     string
	branch         string
	localTimeout   time.Duration
	networkTimeout time.Duration
	author         git.Author
	env            []string
	clock          clock.Clock
	logger         *slog.Logger
}

// New creates an Engine from config.
func New(config Config) *Engine {
	engine := &Engine{
		remoteName:     config.RemoteName,
		branch:         config.Branch,
		localTimeout:   config.LocalTimeout,
		networkTimeout: config.NetworkTimeout,
		author:         config.Author,
		env:            config.Env,
		clock:          config.Clock,
		logger:         config.Logger,
	}
	if engine.remoteName == "" {
		engine.remoteName = defaultRemoteName
	}
	if engine.branch == "" {
		engine.branch = defaultBranch
	}
	if engine.localTimeout <= 0 {
		engine.localTimeout = defaultLocalTimeout
	}
	if engine.networkTimeout <= 0 {
		engine.networkTimeout = defaultNetworkTimeout
	}
	if engine.clock == nil {
		engine.clock = clock.Real()
	}
	if engine.logger == nil {
		engine.logger = slog.Default()
	}
	return engine
}

// RemoteName returns the git remote the engine manages.
func (e *Engine) RemoteName() string { return e.remoteName }

// Sync pushes snapshot to endpoint. See the package documentation for
// the algorithm; every failure is reported through Result.
func (e *Engine) Sync(ctx context.Context, snapshot Snapshot, endpoint remote.Endpoint) Result {
	logger := e.logger.With("project", endpoint.ProjectName, "dir", snapshot.Dir)
	result := Result{Endpoint: endpoint}

	if endpoint.GitURL == "" {
		result.Outcome = NoRemoteConfigured
		result.Message = fmt.Sprintf("no git URL configured for project %q", endpoint.ProjectName)
		return result
	}
	if err := snapshot.Validate(); err != nil {
		return e.fail(result, WorkingCopyFailed, err)
	}

	repo := git.NewRepository(snapshot.Dir, e.env...)

	if !repo.IsWorkTree() {
		logger.Info("initializing working copy", "branch", e.branch)
		if err := e.local(ctx, func(ctx context.Context) error { return repo.Init(ctx, e.branch) }); err != nil {
			return e.fail(result, WorkingCopyFailed, err)
		}
	}

	var configured string
	var found bool
	err := e.local(ctx, func(ctx context.Context) error {
		var err error
		configured, found, err = repo.RemoteURL(ctx, e.remoteName)
		return err
	})
	if err != nil {
		return e.fail(result, WorkingCopyFailed, err)
	}
	switch {
	case !found:
		logger.Info("adding remote", "remote", e.remoteName, "url", endpoint.GitURL)
		if err := e.local(ctx, func(ctx context.Context) error {
			return repo.AddRemote(ctx, e.remoteName, endpoint.GitURL)
		}); err != nil {
			return e.fail(result, WorkingCopyFailed, err)
		}
	case configured != endpoint.GitURL:
		result.Outcome = RemoteMismatch
		result.Message = fmt.Sprintf("remote %q already points at %s, not %s; update it with "+
			"\"git -C %s remote set-url %s <url>\" if the new endpoint is intended",
			e.remoteName, configured, endpoint.GitURL, snapshot.Dir, e.remoteName)
		logger.Warn("remote mismatch", "configured", configured, "requested", endpoint.GitURL)
		return result
	}

	if err := e.local(ctx, repo.StageAll); err != nil {
		return e.fail(result, WorkingCopyFailed, err)
	}

	var staged bool
	if err := e.local(ctx, func(ctx context.Context) error {
		var err error
		staged, err = repo.HasStagedChanges(ctx)
		return err
	}); err != nil {
		return e.fail(result, WorkingCopyFailed, err)
	}

	if staged {
		message := "Update " + e.clock.Now().Format("2006-01-02 15:04")
		if err := e.local(ctx, func(ctx context.Context) error {
			return repo.Commit(ctx, message, e.author)
		}); err != nil {
			return e.fail(result, WorkingCopyFailed, err)
		}
		logger.Info("committed snapshot", "message", message)
	} else {
		result.Noop = true
	}

	var head string
	if err := e.local(ctx, func(ctx context.Context) error {
		var err error
		head, err = repo.Head(ctx)
		return err
	}); err != nil {
		return e.fail(result, WorkingCopyFailed, err)
	}
	if head == "" {
		// Empty content directory on an unborn branch: there is no
		// commit to push and nothing the remote is missing.
		result.Outcome = Success
		result.Message = "noop: snapshot is empty"
		return result
	}
	result.Commit = head

	pushCtx, cancel := context.WithTimeout(ctx, e.networkTimeout)
	defer cancel()
	if err := repo.Push(pushCtx, e.remoteName, "HEAD:"+e.branch); err != nil {
		return e.fail(result, classifyPush(err), err)
	}

	result.Outcome = Success
	if result.Noop {
		result.Message = "noop: nothing changed since the last commit"
	}
	logger.Info("sync complete", "commit", head, "noop", result.Noop)
	return result
}

// local runs step under the local-call timeout.
func (e *Engine) local(ctx context.Context, step func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, e.localTimeout)
	defer cancel()
	return step(stepCtx)
}

// fail fills result with outcome and err's diagnostic. A timed-out git
// call is always a transport failure regardless of which step hit it.
func (e *Engine) fail(result Result, outcome Outcome, err error) Result {
	var commandError *git.CommandError
	if errors.As(err, &commandError) {
		if commandError.Timeout() {
			outcome = TransportError
		}
		result.Message = commandError.Stderr
	}
	if result.Message == "" {
		result.Message = err.Error()
	}
	result.Outcome = outcome
	e.logger.Warn("sync failed",
		"project", result.Endpoint.ProjectName,
		"outcome", string(outcome),
		"error", err,
	)
	return result
}

// transportMarkers are stderr fragments git prints when it never got a
// verdict from the remote.
var transportMarkers = []string{
	"could not resolve host",
	"unable to access",
	"could not read from remote repository",
	"connection refused",
	"connection timed out",
	"operation timed out",
	"network is unreachable",
	"ssl certificate problem",
	"gnutls_handshake",
}

// classifyPush separates "the remote said no" from "the remote never
// answered".
func classifyPush(err error) Outcome {
	var commandError *git.CommandError
	if !errors.As(err, &commandError) {
		return TransportError
	}
	if commandError.Timeout() || commandError.ExitCode < 0 {
		return TransportError
	}
	stderr := strings.ToLower(commandError.Stderr)
	for _, marker := range transportMarkers {
		if strings.Contains(stderr, marker) {
			return TransportError
		}
	}
	return PushRejected
}
