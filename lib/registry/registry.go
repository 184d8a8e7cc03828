// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry is the operator-local record mapping project names
// to their remote endpoints.
//
// The registry is a single JSON object keyed by project name, loaded
// once by [Open] and flushed after every mutation. Reads tolerate
// comments and trailing commas so that an operator can annotate the
// file by hand; writes are always canonical indented JSON.
//
// A git URL, once recorded for a name, is never overwritten: [Add]
// refuses a different URL for an existing name with
// [ErrDuplicateProject]. There is no locking. The file is owned by one
// operator running one process at a time.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/papersync/lib/clock"
	"github.com/bureau-foundation/papersync/lib/remote"
)

// FileName is the registry's file name under the operator's home
// directory.
const FileName = ".overleaf_sync.json"

var (
	// ErrDuplicateProject is returned by Add when the name already maps
	// to a different git URL.
	ErrDuplicateProject = errors.New("registry: project already registered with a different git URL")

	// ErrNotFound reports a registry miss.
	ErrNotFound = errors.New("registry: project not registered")
)

// Entry is one persisted project mapping.
type Entry struct {
	GitURL    string    `json:"git_url"`
	ViewURL   string    `json:"view_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Endpoint returns the entry as an endpoint for name.
func (e Entry) Endpoint(name string) remote.Endpoint {
	return remote.Endpoint{ProjectName: name, GitURL: e.GitURL, ViewURL: e.ViewURL}
}

// Options configures Open.
type Options struct {
	// Clock stamps created_at on new entries. Default clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Registry is a loaded project registry. Not safe for concurrent use.
type Registry struct {
	path    string
	entries map[string]Entry
	clock   clock.Clock
	logger  *slog.Logger
}

// DefaultPath returns ~/.overleaf_sync.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("registry: locating home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Open loads the registry at path. A missing file is an empty registry;
// the file is created on the first Add.
func Open(path string, options Options) (*Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("registry: path is required")
	}
	registry := &Registry{
		path:    path,
		entries: make(map[string]Entry),
		clock:   options.Clock,
		logger:  options.Logger,
	}
	if registry.clock == nil {
		registry.clock = clock.Real()
	}
	if registry.logger == nil {
		registry.logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return registry, nil
		}
		return nil, fmt.Errorf("registry: reading %s: %w", path, err)
	}
	if err := registry.parse(data); err != nil {
		return nil, fmt.Errorf("registry: parsing %s: %w", path, err)
	}
	return registry, nil
}

func (r *Registry) parse(data []byte) error {
	stripped := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(stripped)) == 0 {
		return nil
	}
	var entries map[string]Entry
	if err := json.Unmarshal(stripped, &entries); err != nil {
		return err
	}
	for name, entry := range entries {
		if entry.GitURL == "" {
			return fmt.Errorf("project %q has no git_url", name)
		}
		r.entries[name] = entry
	}
	return nil
}

// Path returns the registry file path.
func (r *Registry) Path() string { return r.path }

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	entry, ok := r.entries[name]
	return entry, ok
}

// Endpoint returns the registered endpoint for name, or ErrNotFound.
func (r *Registry) Endpoint(name string) (remote.Endpoint, error) {
	entry, ok := r.entries[name]
	if !ok {
		return remote.Endpoint{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry.Endpoint(name), nil
}

// Add records endpoint and flushes the registry. Re-adding the same
// git URL is a no-op that keeps the original created_at; a different
// git URL for a registered name fails with ErrDuplicateProject.
func (r *Registry) Add(endpoint remote.Endpoint) error {
	if err := endpoint.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if existing, ok := r.entries[endpoint.ProjectName]; ok {
		if existing.GitURL != endpoint.GitURL {
			return fmt.Errorf("%w: %s is %s", ErrDuplicateProject, endpoint.ProjectName, existing.GitURL)
		}
		if existing.ViewURL != "" || endpoint.ViewURL == "" {
			return nil
		}
		// Fill in a view URL learned after the first registration.
		updated := existing
		updated.ViewURL = endpoint.ViewURL
		r.entries[endpoint.ProjectName] = updated
		if err := r.flush(); err != nil {
			r.entries[endpoint.ProjectName] = existing
			return err
		}
		return nil
	}

	r.entries[endpoint.ProjectName] = Entry{
		GitURL:    endpoint.GitURL,
		ViewURL:   endpoint.ViewURL,
		CreatedAt: r.clock.Now().UTC().Truncate(time.Second),
	}
	if err := r.flush(); err != nil {
		delete(r.entries, endpoint.ProjectName)
		return err
	}
	r.logger.Info("registered project",
		"project", endpoint.ProjectName,
		"git_url", endpoint.GitURL,
		"registry", r.path,
	)
	return nil
}

// Names returns the registered project names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns a copy of every entry keyed by project name.
func (r *Registry) Entries() map[string]Entry {
	entries := make(map[string]Entry, len(r.entries))
	for name, entry := range r.entries {
		entries[name] = entry
	}
	return entries
}

// Len returns the number of registered projects.
func (r *Registry) Len() int { return len(r.entries) }

// flush writes the registry atomically: temporary file in the same
// directory, fsync, rename, then fsync of the directory.
func (r *Registry) flush() error {
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshaling: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(r.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("registry: creating %s: %w", directory, err)
	}

	file, err := os.CreateTemp(directory, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("registry: creating temporary file: %w", err)
	}
	temporaryPath := file.Name()

	if err := file.Chmod(0600); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("registry: setting file mode: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("registry: writing temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("registry: syncing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("registry: closing temporary file: %w", err)
	}
	if err := os.Rename(temporaryPath, r.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("registry: renaming into place: %w", err)
	}

	parent, err := os.Open(directory)
	if err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}
