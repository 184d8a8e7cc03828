// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/bureau-foundation/papersync/lib/config"
)

// GlobalFlags holds the flags every command accepts. Embed it in each
// command's params struct.
type GlobalFlags struct {
	ConfigPath string `json:"-" flag:"config"    desc:"configuration file (default: $PAPERSYNC_CONFIG, else built-in defaults)"`
	Debug      bool   `json:"-" flag:"verbose,v" desc:"log debug detail to stderr"`
}

// verboser is implemented by params structs embedding [GlobalFlags].
type verboser interface {
	Verbose() bool
}

// Verbose reports whether --verbose was given.
func (g *GlobalFlags) Verbose() bool {
	return g.Debug
}

// LoadConfig loads the configuration named by --config, falling back to
// $PAPERSYNC_CONFIG and then to the built-in defaults, and validates it.
func (g *GlobalFlags) LoadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.ConfigPath != "" {
		cfg, err = config.LoadFile(g.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, Validation("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration:\n%w", err)
	}
	return cfg, nil
}
