// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"strings"
	"testing"
)

func TestValidateGitURL(t *testing.T) {
	tests := []struct {
		name    string
		gitURL  string
		wantErr bool
	}{
		{"https", "https://git.overleaf.com/64f0c0ffee", false},
		{"scp style", "git@git.overleaf.com:64f0c0ffee", false},
		{"local bare repository", "/srv/git/paper.git", false},
		{"file scheme", "file:///srv/git/paper.git", false},
		{"empty", "", true},
		{"relative path", "paper.git", true},
		{"scheme without host", "https:///paper", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateGitURL(test.gitURL)
			if (err != nil) != test.wantErr {
				t.Errorf("ValidateGitURL(%q) error = %v, wantErr %v", test.gitURL, err, test.wantErr)
			}
		})
	}
}

func TestEndpointValidate_CollectsAllProblems(t *testing.T) {
	err := Endpoint{}.Validate()
	if err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	message := err.Error()
	if !strings.Contains(message, "project name is required") {
		t.Errorf("error %q does not mention the project name", message)
	}
	if !strings.Contains(message, "git URL is required") {
		t.Errorf("error %q does not mention the git URL", message)
	}
}

func TestProjectID(t *testing.T) {
	if got := ProjectID("https://git.overleaf.com/64f0c0ffee"); got != "64f0c0ffee" {
		t.Errorf("ProjectID = %q, want %q", got, "64f0c0ffee")
	}
	if got := ProjectID("https://git.overleaf.com/64f0c0ffee/"); got != "64f0c0ffee" {
		t.Errorf("ProjectID with trailing slash = %q, want %q", got, "64f0c0ffee")
	}
	if got := ProjectID("/srv/git/paper.git"); got != "" {
		t.Errorf("ProjectID(local path) = %q, want empty", got)
	}
}

func TestViewURLFor(t *testing.T) {
	got := ViewURLFor("https://www.overleaf.com/project/", "https://git.overleaf.com/abc123")
	if want := "https://www.overleaf.com/project/abc123"; got != want {
		t.Errorf("ViewURLFor = %q, want %q", got, want)
	}
	if got := ViewURLFor("", "https://git.overleaf.com/abc123"); got != "" {
		t.Errorf("ViewURLFor without prefix = %q, want empty", got)
	}
}
