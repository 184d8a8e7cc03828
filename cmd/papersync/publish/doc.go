// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package publish implements "papersync publish" and "papersync sync",
// the commands that push a content directory to its hosted project.
package publish
