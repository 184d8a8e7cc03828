// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for papersync.
//
// Configuration is loaded from a single file named by either the
// PAPERSYNC_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). With neither set, [Load] returns [Default]: the
// built-in values target the public host, and a single operator rarely
// needs a file at all. There is no ~/.config discovery and no search
// path.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${XDG_CONFIG_HOME}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values;
// host credentials are read separately by package credential.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Host, Mail, Timeouts, Git
//   - [Default] -- returns a Config targeting the public host
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other papersync packages.
package config
