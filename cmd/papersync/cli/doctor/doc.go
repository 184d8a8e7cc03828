// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the health-check workflow behind
// "papersync doctor".
//
// Each check produces a [Result] with a status, a message, and for
// fixable failures a fix closure executed in --fix mode. The package
// provides:
//
//   - [Result] type with status, message, and optional fix action
//   - Constructors: [Pass], [Fail], [FailWithFix], [Warn], [Skip]
//   - [ExecuteFixes] for running fix closures
//   - [MarkRepaired] for re-check tracking after fixes
//   - [PrintChecklist] for human-readable output
//   - [BuildJSON] for machine-readable output
//
// What to check lives in the doctor command's package; this package
// provides only the workflow.
package doctor
