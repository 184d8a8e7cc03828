// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements "papersync doctor": checks that the local
// environment can publish (git, browser, configuration, registry,
// credentials), with --fix for the repairable ones.
package doctor
