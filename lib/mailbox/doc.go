// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mailbox provisions throwaway inboxes from a mail.tm-compatible
// provider and waits for messages to arrive in them.
//
// A disposable identity bootstraps an operator account on the document
// host: [Client.Acquire] creates the inbox, the caller registers the
// address elsewhere, [Client.PollForMessage] waits for the verification
// mail, and [ExtractActionLink] pulls the verification URL out of its
// body.
//
// The provider API is a small hydra/JSON-LD REST surface:
//
//	GET  /domains        available domains (hydra:member)
//	POST /accounts       create an address/password pair
//	POST /token          exchange the pair for a bearer token
//	GET  /messages       inbox summaries (hydra:member)
//	GET  /messages/{id}  full message with text and html parts
//
// Identities are single-use. Nothing in this package retries a failed
// provisioning call; callers retry with a fresh random address.
package mailbox
