// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential resolves the operator's login for the document
// host.
//
// Each field resolves independently: an explicit value (flag) wins,
// otherwise the environment variable is used. When neither the
// principal nor the secret can be completed the resolver returns
// [ErrUnavailable], which callers treat as a signal to skip automatic
// provisioning rather than as a failure.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environment variable names read by the resolver.
const (
	PrincipalEnv = "OVERLEAF_EMAIL"
	SecretEnv    = "OVERLEAF_PASSWORD"
)

// ErrUnavailable means no complete principal/secret pair could be
// resolved.
var ErrUnavailable = errors.New("credential: credentials unavailable")

// Credentials is a principal (login identifier) paired with its secret.
type Credentials struct {
	Principal string
	Secret    string
}

// String renders the principal with the secret redacted, so
// credentials can appear in logs and error messages.
func (c Credentials) String() string {
	if c.Secret == "" {
		return c.Principal
	}
	return c.Principal + ":********"
}

// Complete reports whether both halves are present.
func (c Credentials) Complete() bool {
	return c.Principal != "" && c.Secret != ""
}

// environment is the env-tagged view of the process environment.
type environment struct {
	Principal string `env:"OVERLEAF_EMAIL"`
	Secret    string `env:"OVERLEAF_PASSWORD"`
}

// Resolver reads credentials from explicit values and the environment.
type Resolver struct {
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Resolve returns credentials for the given explicit values, filling
// each missing half from the environment.
func (r Resolver) Resolve(explicitPrincipal, explicitSecret string) (Credentials, error) {
	var fromEnv environment
	options := env.Options{}
	if r.Environment != nil {
		options.Environment = r.Environment
	}
	if err := env.ParseWithOptions(&fromEnv, options); err != nil {
		return Credentials{}, fmt.Errorf("credential: reading environment: %w", err)
	}

	credentials := Credentials{
		Principal: firstNonEmpty(explicitPrincipal, fromEnv.Principal),
		Secret:    firstNonEmpty(explicitSecret, fromEnv.Secret),
	}
	if !credentials.Complete() {
		var missing []string
		if credentials.Principal == "" {
			missing = append(missing, PrincipalEnv)
		}
		if credentials.Secret == "" {
			missing = append(missing, SecretEnv)
		}
		return Credentials{}, fmt.Errorf("%w: %s not set", ErrUnavailable, strings.Join(missing, " and "))
	}
	return credentials, nil
}

// firstNonEmpty returns the first value that is not blank, unchanged.
// Surrounding spaces may belong to a secret.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
