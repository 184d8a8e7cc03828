// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		environment       map[string]string
		explicitPrincipal string
		explicitSecret    string
		want              Credentials
		wantErr           bool
	}{
		{
			name:              "explicit pair wins",
			environment:       map[string]string{PrincipalEnv: "env@example.com", SecretEnv: "env-secret"},
			explicitPrincipal: "flag@example.com",
			explicitSecret:    "flag-secret",
			want:              Credentials{Principal: "flag@example.com", Secret: "flag-secret"},
		},
		{
			name:        "environment pair",
			environment: map[string]string{PrincipalEnv: "env@example.com", SecretEnv: "env-secret"},
			want:        Credentials{Principal: "env@example.com", Secret: "env-secret"},
		},
		{
			name:              "partial explicit completed from environment",
			environment:       map[string]string{SecretEnv: "env-secret"},
			explicitPrincipal: "flag@example.com",
			want:              Credentials{Principal: "flag@example.com", Secret: "env-secret"},
		},
		{
			name:        "nothing set",
			environment: map[string]string{},
			wantErr:     true,
		},
		{
			name:        "secret missing",
			environment: map[string]string{PrincipalEnv: "env@example.com"},
			wantErr:     true,
		},
		{
			name:              "whitespace is not a value",
			environment:       map[string]string{PrincipalEnv: "env@example.com", SecretEnv: "env-secret"},
			explicitPrincipal: "   ",
			want:              Credentials{Principal: "env@example.com", Secret: "env-secret"},
		},
		{
			name:              "surrounding spaces are kept",
			environment:       map[string]string{},
			explicitPrincipal: "a",
			explicitSecret:    " b ",
			want:              Credentials{Principal: "a", Secret: " b "},
		},
		{
			name:        "environment secret kept verbatim",
			environment: map[string]string{PrincipalEnv: "env@example.com", SecretEnv: "  padded secret "},
			want:        Credentials{Principal: "env@example.com", Secret: "  padded secret "},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			resolver := Resolver{Environment: test.environment}
			got, err := resolver.Resolve(test.explicitPrincipal, test.explicitSecret)
			if test.wantErr {
				if !errors.Is(err, ErrUnavailable) {
					t.Fatalf("Resolve error = %v, want ErrUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != test.want {
				t.Errorf("Resolve = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestResolve_ErrorNamesMissingVariables(t *testing.T) {
	t.Parallel()

	_, err := Resolver{Environment: map[string]string{}}.Resolve("", "")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{PrincipalEnv, SecretEnv} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}

func TestCredentials_StringRedactsSecret(t *testing.T) {
	t.Parallel()

	credentials := Credentials{Principal: "a@example.com", Secret: "hunter2"}
	if strings.Contains(credentials.String(), "hunter2") {
		t.Errorf("String() = %q leaks the secret", credentials.String())
	}
	if !strings.Contains(credentials.String(), "a@example.com") {
		t.Errorf("String() = %q omits the principal", credentials.String())
	}
}
