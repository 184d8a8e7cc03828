// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/bureau-foundation/papersync/lib/config"
	"github.com/bureau-foundation/papersync/lib/credential"
	"github.com/bureau-foundation/papersync/lib/git"
	"github.com/bureau-foundation/papersync/lib/gitsync"
	"github.com/bureau-foundation/papersync/lib/mailbox"
	"github.com/bureau-foundation/papersync/lib/publish"
	"github.com/bureau-foundation/papersync/lib/registry"
	"github.com/bureau-foundation/papersync/lib/session"
	"github.com/bureau-foundation/papersync/lib/session/browser"
)

// BinaryName is the command name printed in operator instructions.
const BinaryName = "papersync"

// OpenRegistry opens the project registry at the configured path.
func OpenRegistry(cfg *config.Config, logger *slog.Logger) (*registry.Registry, error) {
	projects, err := registry.Open(cfg.Paths.Registry, registry.Options{Logger: logger})
	if err != nil {
		return nil, Internal("%w", err)
	}
	return projects, nil
}

// NewSyncEngine builds the sync engine from the host and timeout
// sections.
func NewSyncEngine(cfg *config.Config, logger *slog.Logger) *gitsync.Engine {
	return gitsync.New(gitsync.Config{
		RemoteName:     cfg.Host.RemoteName,
		Branch:         cfg.Host.Branch,
		LocalTimeout:   cfg.Timeouts.GitLocal,
		NetworkTimeout: cfg.Timeouts.GitNetwork,
		Author:         git.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
		Logger:         logger,
	})
}

// SessionURLs compiles the host URLs and step patterns.
func SessionURLs(cfg *config.Config) (session.URLs, error) {
	urls := session.URLs{
		Login:       cfg.Host.LoginURL,
		Register:    cfg.Host.RegisterURL,
		NewProject:  cfg.Host.NewProjectURL,
		ProjectView: cfg.Host.ProjectViewURL,
	}
	for _, pattern := range []struct {
		name   string
		glob   string
		target *session.URLPattern
	}{
		{"host.dashboard_pattern", cfg.Host.DashboardPattern, &urls.Dashboard},
		{"host.editor_pattern", cfg.Host.EditorPattern, &urls.Editor},
		{"host.registered_pattern", cfg.Host.RegisteredPattern, &urls.Registered},
	} {
		compiled, err := session.CompileURLPattern(pattern.glob)
		if err != nil {
			return session.URLs{}, fmt.Errorf("%s: %w", pattern.name, err)
		}
		*pattern.target = compiled
	}
	return urls, nil
}

// NewDriver builds the session driver over a chromedp browser launcher.
func NewDriver(cfg *config.Config, logger *slog.Logger) (*session.Driver, error) {
	urls, err := SessionURLs(cfg)
	if err != nil {
		return nil, Validation("%w", err)
	}
	selectors, err := session.ParseSelectors(cfg.Host.Selectors)
	if err != nil {
		return nil, Validation("host.selectors: %w", err)
	}
	execPath, err := cfg.BrowserPath()
	if err != nil {
		return nil, Validation("%w", err)
	}

	launcher := browser.NewLauncher(browser.Config{
		ExecPath: execPath,
		Headed:   cfg.Host.Browser.Headed,
		Logger:   logger.With("component", "browser"),
	})
	driver, err := session.NewDriver(session.Config{
		Launcher:     launcher,
		URLs:         &urls,
		Selectors:    &selectors,
		GitURLPrefix: cfg.Host.GitURLPrefix,
		StepTimeout:  cfg.Timeouts.BrowserStep,
		Logger:       logger,
	})
	if err != nil {
		return nil, Internal("%w", err)
	}
	return driver, nil
}

// NewMailbox builds the disposable mailbox client.
func NewMailbox(cfg *config.Config, logger *slog.Logger) (*mailbox.Client, error) {
	client, err := mailbox.NewClient(mailbox.Config{
		BaseURL:        cfg.Mail.BaseURL,
		RequestTimeout: cfg.Timeouts.MailRequest,
		PollInterval:   cfg.Mail.PollInterval,
		Logger:         logger,
	})
	if err != nil {
		return nil, Validation("%w", err)
	}
	return client, nil
}

// VerifyLinkPattern compiles the configured verification link pattern.
func VerifyLinkPattern(cfg *config.Config) (*regexp.Regexp, error) {
	pattern, err := regexp.Compile(cfg.Mail.LinkPattern)
	if err != nil {
		return nil, Validation("mail.link_pattern: %w", err)
	}
	return pattern, nil
}

// OrchestratorOptions select which collaborators [NewOrchestrator]
// wires in.
type OrchestratorOptions struct {
	// Automatic wires the session driver. Without it the orchestrator
	// can only publish registered projects.
	Automatic bool

	// Environment overrides the process environment for credential
	// lookup. Nil reads the process environment.
	Environment map[string]string
}

// NewOrchestrator wires the publish orchestrator and returns it with
// the registry it reads.
func NewOrchestrator(cfg *config.Config, logger *slog.Logger, options OrchestratorOptions) (*publish.Orchestrator, *registry.Registry, error) {
	projects, err := OpenRegistry(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	orchestratorConfig := publish.Config{
		Credentials: credential.Resolver{Environment: options.Environment},
		Registry:    projects,
		Syncer:      NewSyncEngine(cfg, logger),
		Host: publish.Host{
			NewProjectURL: cfg.Host.NewProjectURL,
			Command:       BinaryName,
		},
		Logger: logger,
	}
	if options.Automatic {
		driver, err := NewDriver(cfg, logger)
		if err != nil {
			logger.Warn("browser automation unavailable", "error", err)
			orchestratorConfig.DriverUnavailable = err
		} else {
			orchestratorConfig.Driver = driver
		}
	}

	orchestrator, err := publish.New(orchestratorConfig)
	if err != nil {
		return nil, nil, Internal("%w", err)
	}
	return orchestrator, projects, nil
}
