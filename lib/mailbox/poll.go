// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultSubjectMatch are the subject terms of a host verification
// mail.
var DefaultSubjectMatch = []string{"overleaf", "verify"}

// PollForMessage fetches the inbox every poll interval until a message
// whose subject contains any of subjectMatch (case-insensitive)
// arrives, then returns it fully fetched and marks the identity
// Verified. When timeout elapses first it returns nil, nil and marks
// the identity TimedOut: verification mail is optional on some hosts.
// A zero timeout fetches the inbox exactly once.
//
// Failed inbox and message fetches are logged and retried on the next
// tick.
// Context cancellation returns the context's error.
func (client *Client) PollForMessage(ctx context.Context, identity *Identity, subjectMatch []string, timeout time.Duration) (*Message, error) {
	terms := make([]string, 0, len(subjectMatch))
	for _, term := range subjectMatch {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, errors.New("mailbox: at least one subject term is required")
	}

	deadline := client.clock.Now().Add(timeout)
	logger := client.logger.With("address", identity.Address)
	logger.Info("waiting for message", "subject_match", terms, "timeout", timeout)

	for {
		summaries, err := client.Messages(ctx, identity)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("inbox fetch failed", "error", err)
		}
		for _, summary := range summaries {
			if !subjectMatches(summary.Subject, terms) {
				continue
			}
			logger.Info("found message", "subject", summary.Subject, "id", summary.ID)
			message, err := client.Message(ctx, identity, summary.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("message fetch failed", "id", summary.ID, "error", err)
				break
			}
			identity.Status = Verified
			return message, nil
		}

		remaining := deadline.Sub(client.clock.Now())
		if remaining <= 0 {
			identity.Status = TimedOut
			logger.Info("no matching message before timeout")
			return nil, nil
		}
		wait := min(client.pollInterval, remaining)
		select {
		case <-client.clock.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func subjectMatches(subject string, terms []string) bool {
	lowered := strings.ToLower(subject)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
