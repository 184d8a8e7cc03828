// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote defines the address of a project on the LaTeX hosting
// service: the git URL that content is pushed to and the browser URL a
// human opens to view the compiled document.
//
// An [Endpoint] is produced by the session driver after provisioning a
// project, or entered by the operator with "papersync project add", and
// is stored in the project registry keyed by project name.
package remote

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// Endpoint is a project's address on the remote host.
type Endpoint struct {
	// ProjectName is the registry key and the project title on the host.
	ProjectName string `json:"project_name"`

	// GitURL is the version-control URL pushed to by the sync engine
	// (e.g., "https://git.overleaf.com/64f0c0ffee").
	GitURL string `json:"git_url"`

	// ViewURL is the human-viewable project page. May be empty for
	// endpoints registered by hand without one.
	ViewURL string `json:"view_url,omitempty"`
}

// scpLike matches scp-style git addresses ("git@host:path").
var scpLike = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:.+$`)

// Validate checks that the endpoint names a project and carries a git
// URL that git can push to: a scheme URL, an scp-style address, or an
// absolute local path (used for bare repositories in tests and for
// operators mirroring to disk).
func (e Endpoint) Validate() error {
	var errs []error
	if strings.TrimSpace(e.ProjectName) == "" {
		errs = append(errs, fmt.Errorf("project name is required"))
	}
	if err := ValidateGitURL(e.GitURL); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateGitURL reports whether gitURL is usable as a push target.
func ValidateGitURL(gitURL string) error {
	if gitURL == "" {
		return fmt.Errorf("git URL is required")
	}
	if filepath.IsAbs(gitURL) || scpLike.MatchString(gitURL) {
		return nil
	}
	parsed, err := url.Parse(gitURL)
	if err != nil {
		return fmt.Errorf("git URL %q: %w", gitURL, err)
	}
	if parsed.Scheme == "" || (parsed.Host == "" && parsed.Scheme != "file") {
		return fmt.Errorf("git URL %q is not absolute", gitURL)
	}
	return nil
}

// ProjectID derives the host's project identifier from its git URL:
// the URL path with surrounding slashes removed.
//
//	ProjectID("https://git.overleaf.com/64f0c0ffee") == "64f0c0ffee"
func ProjectID(gitURL string) string {
	parsed, err := url.Parse(gitURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.Trim(parsed.Path, "/")
}

// ViewURLFor returns the browser URL for the project behind gitURL,
// built from the host's project page prefix. Returns "" when no project
// ID can be derived.
func ViewURLFor(viewPrefix, gitURL string) string {
	id := ProjectID(gitURL)
	if id == "" || viewPrefix == "" {
		return ""
	}
	return strings.TrimRight(viewPrefix, "/") + "/" + id
}
