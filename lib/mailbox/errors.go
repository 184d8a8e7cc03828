// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import "fmt"

// Provisioning stages reported in ProvisioningError.
const (
	StageDomains = "domains"
	StageAccount = "account"
	StageToken   = "token"
)

// ProvisioningError means the provider answered but refused to create
// the identity (no domains, address taken, rate limited).
type ProvisioningError struct {
	Stage      string
	StatusCode int
	Body       string
}

func (e *ProvisioningError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("mailbox: %s: %s", e.Stage, e.Body)
	}
	return fmt.Sprintf("mailbox: %s: HTTP %d: %s", e.Stage, e.StatusCode, e.Body)
}

// TransportError means the provider could not be reached or the
// request timed out.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mailbox: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// statusError is a non-2xx response outside provisioning.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("mailbox: HTTP %d: %s", e.StatusCode, e.Body)
}
