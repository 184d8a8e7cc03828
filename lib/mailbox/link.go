// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"regexp"
	"strings"
)

// DefaultVerifyLinkPattern matches the host's email verification link
// inside an HTML anchor.
var DefaultVerifyLinkPattern = regexp.MustCompile(`href="(https://www\.overleaf\.com/verify[^"]+)"`)

// ExtractActionLink returns the first match of pattern in the message
// body, searching HTML parts before the plain text part. When the
// pattern has a capture group the first group is returned. HTML-escaped
// ampersands are unescaped.
func ExtractActionLink(message *Message, pattern *regexp.Regexp) (string, bool) {
	if message == nil || pattern == nil {
		return "", false
	}
	parts := make([]string, 0, len(message.HTML)+1)
	parts = append(parts, message.HTML...)
	parts = append(parts, message.Text)

	for _, part := range parts {
		match := pattern.FindStringSubmatch(part)
		if match == nil {
			continue
		}
		link := match[0]
		if len(match) > 1 && match[1] != "" {
			link = match[1]
		}
		return strings.ReplaceAll(link, "&amp;", "&"), true
	}
	return "", false
}
