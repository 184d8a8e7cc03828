// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gitsync pushes a generated paper directory to its remote
// project over git.
//
// [Engine.Sync] is idempotent: it reuses an existing working copy,
// configures the host remote only when missing, stages the whole tree,
// commits only when something changed, and always pushes so that an
// earlier failed push is retried. Every outcome is reported as a
// [Result] with a closed [Outcome] set instead of an error. The engine
// never repoints an existing remote, never merges, and never force
// pushes: those are operator decisions.
//
// Each git call runs under its own timeout. A call cut off by its
// deadline is reported as [TransportError], the same as an unreachable
// remote.
package gitsync
