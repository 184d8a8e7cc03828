// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package publish composes credential resolution, UI provisioning, the
// project registry, and git sync into one operation that always ends in
// an actionable [Outcome]: the paper was synced, the sync failed
// with git's diagnostic, or the operator gets exact manual steps.
//
// Automatic provisioning is best effort. A registered project is synced
// without touching the host UI; an unregistered one is provisioned when
// the mode and credentials allow it, and any failure along that path
// falls through to the registry and finally to instructions.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/papersync/lib/credential"
	"github.com/bureau-foundation/papersync/lib/gitsync"
	"github.com/bureau-foundation/papersync/lib/registry"
	"github.com/bureau-foundation/papersync/lib/remote"
	"github.com/bureau-foundation/papersync/lib/session"
)

// Mode selects whether automatic provisioning is attempted.
type Mode string

const (
	AutomaticThenManual Mode = "automatic_then_manual"
	RegistryOnly        Mode = "registry_only"
)

// Kind classifies an Outcome.
type Kind string

const (
	Synced               Kind = "synced"
	SyncFailed           Kind = "sync_failed"
	ManualActionRequired Kind = "manual_action_required"
)

// Source says where a synced endpoint came from.
type Source string

const (
	Provisioned Source = "provisioned"
	Registry    Source = "registry"
)

// CredentialSource resolves host credentials.
type CredentialSource interface {
	Resolve(explicitPrincipal, explicitSecret string) (credential.Credentials, error)
}

// Provisioner creates projects on the host.
type Provisioner interface {
	Provision(ctx context.Context, credentials credential.Credentials, projectName string) session.Result
}

// ProjectRegistry records endpoints by project name.
type ProjectRegistry interface {
	Lookup(name string) (registry.Entry, bool)
	Add(endpoint remote.Endpoint) error
}

// Syncer pushes a snapshot to an endpoint.
type Syncer interface {
	Sync(ctx context.Context, snapshot gitsync.Snapshot, endpoint remote.Endpoint) gitsync.Result
}

// Host describes where an operator completes setup by hand.
type Host struct {
	// NewProjectURL is the host page for creating a project.
	NewProjectURL string

	// Command is the CLI name used in the printed commands. Default
	// "papersync".
	Command string
}

// Config holds the orchestrator's collaborators.
type Config struct {
	Credentials CredentialSource

	// Driver may be nil, which disables automatic provisioning.
	Driver Provisioner

	// DriverUnavailable is why Driver is nil, when it could not be
	// built. Automatic publishes report it and fall through to the
	// registry.
	DriverUnavailable error

	Registry ProjectRegistry
	Syncer   Syncer
	Host     Host

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Orchestrator runs publishes.
type Orchestrator struct {
	credentials CredentialSource
	driver      Provisioner
	unavailable error
	registry    ProjectRegistry
	syncer      Syncer
	host        Host
	logger      *slog.Logger
}

// New creates an Orchestrator. Registry and Syncer are required.
func New(config Config) (*Orchestrator, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("publish: registry is required")
	}
	if config.Syncer == nil {
		return nil, fmt.Errorf("publish: syncer is required")
	}
	orchestrator := &Orchestrator{
		credentials: config.Credentials,
		driver:      config.Driver,
		unavailable: config.DriverUnavailable,
		registry:    config.Registry,
		syncer:      config.Syncer,
		host:        config.Host,
		logger:      config.Logger,
	}
	if orchestrator.credentials == nil {
		orchestrator.credentials = credential.Resolver{}
	}
	if orchestrator.host.Command == "" {
		orchestrator.host.Command = "papersync"
	}
	if orchestrator.logger == nil {
		orchestrator.logger = slog.Default()
	}
	return orchestrator, nil
}

// Request is one publish.
type Request struct {
	Snapshot gitsync.Snapshot

	// ProjectName defaults to the snapshot directory's base name.
	ProjectName string

	Mode Mode

	// Principal and Secret override the environment credentials.
	Principal string
	Secret    string
}

// Outcome is the result of a publish.
type Outcome struct {
	Kind        Kind   `json:"kind"`
	ProjectName string `json:"project_name"`

	// Source and Endpoint are set when a sync was attempted.
	Source   Source          `json:"source,omitempty"`
	Endpoint remote.Endpoint `json:"endpoint,omitzero"`

	Sync *gitsync.Result `json:"sync,omitempty"`

	// AutoFailure explains why automatic provisioning was skipped or
	// failed, when it was attempted.
	AutoFailure string `json:"auto_failure,omitempty"`

	// ManualURL is where the operator finishes setup by hand.
	ManualURL string `json:"manual_url,omitempty"`

	// Instructions is set for ManualActionRequired.
	Instructions string `json:"instructions,omitempty"`
}

// Publish syncs request.Snapshot to its project's endpoint, obtaining
// the endpoint by provisioning when allowed.
func (o *Orchestrator) Publish(ctx context.Context, request Request) Outcome {
	name := request.ProjectName
	if name == "" {
		name = request.Snapshot.Name()
	}
	logger := o.logger.With("project", name, "mode", string(request.Mode))
	outcome := Outcome{ProjectName: name, ManualURL: o.host.NewProjectURL}

	if entry, ok := o.registry.Lookup(name); ok {
		return o.sync(ctx, logger, outcome, request.Snapshot, Registry, entry.Endpoint(name))
	}

	if request.Mode == AutomaticThenManual {
		endpoint, failure, manualURL := o.provision(ctx, logger, request, name)
		if failure == "" {
			return o.sync(ctx, logger, outcome, request.Snapshot, Provisioned, endpoint)
		}
		outcome.AutoFailure = failure
		if manualURL != "" {
			outcome.ManualURL = manualURL
		}
		logger.Warn("automatic provisioning unavailable, falling back to registry", "reason", failure)

		// Registering the fresh endpoint can fail because another
		// entry appeared under this name; the registry is the
		// authority then.
		if entry, ok := o.registry.Lookup(name); ok {
			return o.sync(ctx, logger, outcome, request.Snapshot, Registry, entry.Endpoint(name))
		}
	}

	outcome.Kind = ManualActionRequired
	outcome.Instructions = o.instructions(name, request.Snapshot.Dir, outcome.ManualURL, outcome.AutoFailure)
	logger.Info("manual action required")
	return outcome
}

// provision returns the new endpoint, or a non-empty failure
// description and the driver's manual fallback URL.
func (o *Orchestrator) provision(ctx context.Context, logger *slog.Logger, request Request, name string) (remote.Endpoint, string, string) {
	if o.driver == nil && o.unavailable != nil {
		return remote.Endpoint{}, fmt.Sprintf("browser automation unavailable: %v", o.unavailable), ""
	}
	credentials, err := o.credentials.Resolve(request.Principal, request.Secret)
	if err != nil {
		return remote.Endpoint{}, err.Error(), ""
	}
	if o.driver == nil {
		return remote.Endpoint{}, "automatic provisioning is not configured", ""
	}

	logger.Info("provisioning project", "principal", credentials.Principal)
	result := o.driver.Provision(ctx, credentials, name)
	if !result.OK() {
		failure := fmt.Sprintf("provisioning ended in state %s", result.State)
		if err := result.Error(); err != nil {
			failure = err.Error()
		}
		return remote.Endpoint{}, failure, result.ManualURL
	}
	if err := o.registry.Add(result.Endpoint); err != nil {
		return remote.Endpoint{}, fmt.Sprintf("registering provisioned project: %v", err), ""
	}
	return result.Endpoint, "", ""
}

func (o *Orchestrator) sync(ctx context.Context, logger *slog.Logger, outcome Outcome, snapshot gitsync.Snapshot, source Source, endpoint remote.Endpoint) Outcome {
	logger.Info("syncing", "source", string(source), "git_url", endpoint.GitURL)
	result := o.syncer.Sync(ctx, snapshot, endpoint)
	outcome.Source = source
	outcome.Endpoint = endpoint
	outcome.Sync = &result
	outcome.ManualURL = ""
	if result.OK() {
		outcome.Kind = Synced
	} else {
		outcome.Kind = SyncFailed
	}
	return outcome
}

func (o *Orchestrator) instructions(name, dir, manualURL, autoFailure string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Project %q has no registered git endpoint.\n", name)
	if autoFailure != "" {
		fmt.Fprintf(&builder, "Automatic setup did not complete: %s\n", autoFailure)
	}
	builder.WriteString("\nTo finish by hand:\n")
	if manualURL != "" {
		fmt.Fprintf(&builder, "  1. Open %s and create a blank project named %q.\n", manualURL, name)
	} else {
		fmt.Fprintf(&builder, "  1. Create a blank project named %q on the host.\n", name)
	}
	builder.WriteString("  2. In the project, open Menu > Git and copy the git URL.\n")
	fmt.Fprintf(&builder, "  3. Register it:\n       %s project add %s <git-url>\n", o.host.Command, quoteArgument(name))
	if dir != "" {
		fmt.Fprintf(&builder, "  4. Publish again:\n       %s sync %s %s\n", o.host.Command, quoteArgument(dir), quoteArgument(name))
	}
	return builder.String()
}

// quoteArgument single-quotes s for a POSIX shell when it contains
// anything beyond a conservative safe set.
func quoteArgument(s string) string {
	safe := s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:@+=,", r))
	}) < 0
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
