// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
)

var (
	ErrLaunchFailed       = errors.New("browser launch failed")
	ErrLoginFailed        = errors.New("login failed")
	ErrCreationFailed     = errors.New("project creation failed")
	ErrEndpointNotFound   = errors.New("git endpoint not found")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrVisitFailed        = errors.New("page visit failed")
)

// StageError reports which transition failed. errors.Is matches both
// the stage sentinel and the underlying cause.
type StageError struct {
	// Stage is the state the flow was in when the transition failed.
	Stage State

	// Kind is one of the Err* sentinels.
	Kind error

	Cause error
}

func (e *StageError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("session: %v (from %s)", e.Kind, e.Stage)
	}
	return fmt.Sprintf("session: %v (from %s): %v", e.Kind, e.Stage, e.Cause)
}

func (e *StageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
