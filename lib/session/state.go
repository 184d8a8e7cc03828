// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

// State is a UI state of a driven flow.
type State string

const (
	Start             State = "start"
	LoggedIn          State = "logged_in"
	ProjectCreated    State = "project_created"
	EndpointExtracted State = "endpoint_extracted"
	Registered        State = "registered"
	Done              State = "done"

	// Failed is absorbing: no transition leaves it.
	Failed State = "failed"
)
