// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint exit path. It is the
// one place outside the CLI output helpers that writes to stderr
// directly, since a failure in main() may happen before or after any
// structured logger exists.
package process
