// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitsync

import (
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the directory of generated document files at the moment
// of sync. The caller owns it; the engine only adds git metadata.
type Snapshot struct {
	Dir string
}

// NewSnapshot resolves dir to an absolute path and validates it.
func NewSnapshot(dir string) (Snapshot, error) {
	absolute, err := filepath.Abs(dir)
	if err != nil {
		return Snapshot{}, fmt.Errorf("resolving content path %q: %w", dir, err)
	}
	snapshot := Snapshot{Dir: absolute}
	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

// Validate checks that the snapshot directory exists.
func (s Snapshot) Validate() error {
	if s.Dir == "" {
		return fmt.Errorf("content path is required")
	}
	info, err := os.Stat(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("content path %s does not exist", s.Dir)
		}
		return fmt.Errorf("content path %s: %w", s.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content path %s is not a directory", s.Dir)
	}
	return nil
}

// Name returns the directory's base name, the default project name.
func (s Snapshot) Name() string {
	return filepath.Base(s.Dir)
}
