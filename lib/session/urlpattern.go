// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"regexp"
	"strings"
)

// URLPattern is a glob over a full URL: "**" matches any run of
// characters, "*" any run without a slash, "?" one character. Query
// strings and fragments are ignored when matching.
type URLPattern struct {
	raw    string
	regexp *regexp.Regexp
}

// CompileURLPattern compiles a glob such as "**/project".
func CompileURLPattern(glob string) (URLPattern, error) {
	if glob == "" {
		return URLPattern{}, fmt.Errorf("empty URL pattern")
	}
	var builder strings.Builder
	builder.WriteString("^")
	for index := 0; index < len(glob); index++ {
		switch character := glob[index]; character {
		case '*':
			if index+1 < len(glob) && glob[index+1] == '*' {
				builder.WriteString(".*")
				index++
			} else {
				builder.WriteString("[^/]*")
			}
		case '?':
			builder.WriteString(".")
		default:
			builder.WriteString(regexp.QuoteMeta(string(character)))
		}
	}
	builder.WriteString("$")
	compiled, err := regexp.Compile(builder.String())
	if err != nil {
		return URLPattern{}, fmt.Errorf("URL pattern %q: %w", glob, err)
	}
	return URLPattern{raw: glob, regexp: compiled}, nil
}

// MustCompileURLPattern is CompileURLPattern for constants.
func MustCompileURLPattern(glob string) URLPattern {
	pattern, err := CompileURLPattern(glob)
	if err != nil {
		panic(err)
	}
	return pattern
}

// Match reports whether url matches, ignoring query and fragment.
func (p URLPattern) Match(url string) bool {
	if p.regexp == nil {
		return false
	}
	if index := strings.IndexAny(url, "?#"); index >= 0 {
		url = url[:index]
	}
	return p.regexp.MatchString(url)
}

func (p URLPattern) String() string { return p.raw }

// URLs are the host surfaces the flows visit or wait for.
type URLs struct {
	Login      string
	Register   string
	NewProject string

	// ProjectView is the prefix of a project's browser URL; the
	// project ID is appended.
	ProjectView string

	// Dashboard is where a successful login lands.
	Dashboard URLPattern

	// Editor is where a created project opens.
	Editor URLPattern

	// Registered is where a successful sign-up lands.
	Registered URLPattern
}

// DefaultURLs returns the public host's URLs.
func DefaultURLs() URLs {
	return URLs{
		Login:       "https://www.overleaf.com/login",
		Register:    "https://www.overleaf.com/register",
		NewProject:  "https://www.overleaf.com/project/new",
		ProjectView: "https://www.overleaf.com/project",
		Dashboard:   MustCompileURLPattern("**/project"),
		Editor:      MustCompileURLPattern("**/project/*"),
		Registered:  MustCompileURLPattern("**/project**"),
	}
}
