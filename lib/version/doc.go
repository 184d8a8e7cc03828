// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the papersync binary.
//
// Release builds inject [GitCommit], [GitDirty], [BuildTime], and
// [Version] with -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/papersync/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Builds without injection (go install, go run) fall back to the VCS
// stamp the Go toolchain embeds in the binary, when present.
package version
