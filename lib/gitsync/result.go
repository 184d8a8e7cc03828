// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitsync

import (
	"fmt"

	"github.com/bureau-foundation/papersync/lib/remote"
)

// Outcome classifies a sync attempt.
type Outcome string

const (
	// Success means the remote holds the snapshot. Result.Noop is set
	// when there was nothing new to commit.
	Success Outcome = "success"

	// NoRemoteConfigured means the endpoint carried no git URL.
	NoRemoteConfigured Outcome = "no_remote_configured"

	// RemoteMismatch means the working copy already has the host remote
	// pointing somewhere else. The remote is left untouched.
	RemoteMismatch Outcome = "remote_mismatch"

	// PushRejected means the remote refused the push (diverged history,
	// revoked credentials). Result.Message carries git's stderr.
	PushRejected Outcome = "push_rejected"

	// TransportError means the remote could not be reached or a git
	// call exceeded its timeout.
	TransportError Outcome = "transport_error"

	// WorkingCopyFailed means a local step (init, stage, commit)
	// failed before anything was sent.
	WorkingCopyFailed Outcome = "working_copy_failed"
)

// Result is the outcome of one Sync call. Not persisted.
type Result struct {
	Outcome  Outcome         `json:"outcome"`
	Endpoint remote.Endpoint `json:"endpoint"`

	// Noop is true when the commit step found no changes.
	Noop bool `json:"noop,omitempty"`

	// Commit is the commit the remote branch was pushed to, when known.
	Commit string `json:"commit,omitempty"`

	// Message is a human-readable diagnostic; for push failures it is
	// git's stderr verbatim.
	Message string `json:"message,omitempty"`
}

// OK reports whether the sync left the remote up to date.
func (r Result) OK() bool { return r.Outcome == Success }

func (r Result) String() string {
	switch r.Outcome {
	case Success:
		if r.Noop {
			return fmt.Sprintf("already in sync with %s", r.Endpoint.GitURL)
		}
		return fmt.Sprintf("pushed %s to %s", shortCommit(r.Commit), r.Endpoint.GitURL)
	default:
		return fmt.Sprintf("%s: %s", r.Outcome, r.Message)
	}
}

func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	if commit == "" {
		return "HEAD"
	}
	return commit
}
