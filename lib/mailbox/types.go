// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import "time"

// VerificationStatus tracks whether the identity's verification mail
// has been seen.
type VerificationStatus string

const (
	Pending  VerificationStatus = "pending"
	Verified VerificationStatus = "verified"
	TimedOut VerificationStatus = "timed_out"
)

// Identity is a provisioned disposable inbox. Only PollForMessage
// changes Status.
type Identity struct {
	Address string             `json:"address"`
	Secret  string             `json:"-"`
	Status  VerificationStatus `json:"status"`

	// token authorizes inbox reads.
	token string
}

// Summary is an inbox listing entry.
type Summary struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	From      Address   `json:"from"`
	Intro     string    `json:"intro"`
	CreatedAt time.Time `json:"createdAt"`
}

// Address is a mail participant.
type Address struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Message is a fully fetched message.
type Message struct {
	ID      string   `json:"id"`
	Subject string   `json:"subject"`
	From    Address  `json:"from"`
	Text    string   `json:"text"`
	HTML    []string `json:"html"`
}

type domain struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

// collection is the hydra envelope around list responses.
type collection[T any] struct {
	Members []T `json:"hydra:member"`
}

type accountRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}
