// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for papersync packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-deadline
// pattern used when a test waits on a goroutine driven by a fake clock.
// They are the only place tests consult the wall clock, and only as a
// hang guard: a correct test never reaches the deadline.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
