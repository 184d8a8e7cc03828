// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session drives the document host's web UI to provision a
// project and read back its git URL.
//
// The host publishes no API for project creation, so [Driver.Provision]
// walks the UI as a state machine:
//
//	Start -> LoggedIn -> ProjectCreated -> EndpointExtracted -> Done
//
// with [Failed] reachable from every state. Each transition runs under
// one bounded wait (Config.StepTimeout). The UI is not a contract this
// package controls, so every failure, including a panic inside the
// page implementation, is returned as a [Result] carrying a
// [StageError] and the URL for doing the step by hand. Nothing is
// retried here; falling back is the caller's decision.
//
// The browser itself sits behind the [Page] and [Launcher] interfaces.
// Package browser provides the chromedp implementation; tests use
// scripted fakes. The page is closed when a flow ends, whichever state
// it ends in.
package session
