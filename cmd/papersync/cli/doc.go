// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the papersync binary.
//
// A [Command] tree dispatches on the first positional argument. Leaf
// commands declare their flags as a tagged params struct (see
// [BindFlags]); every params struct embeds [GlobalFlags] for --config
// and --verbose and, when the command has machine-readable output,
// [JSONOutput] for --json. Run functions receive a context cancelled on
// interrupt and a logger scoped to the command path.
//
// Errors returned from Run are categorized with [Validation],
// [NotFound], [Conflict], [Transient] and [Internal]. An [ExitError]
// sets the process exit code without printing anything further.
//
// The package also builds the library components from a loaded
// configuration (registry, sync engine, session driver, mailbox) so that
// every command wires them the same way.
package cli
