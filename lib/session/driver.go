// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bureau-foundation/papersync/lib/credential"
	"github.com/bureau-foundation/papersync/lib/remote"
)

const defaultStepTimeout = 30 * time.Second

// Config holds configuration for a Driver.
type Config struct {
	// Launcher opens browser pages. Required.
	Launcher Launcher

	// URLs default to DefaultURLs().
	URLs *URLs

	// Selectors default to DefaultSelectors().
	Selectors *Selectors

	// GitURLPrefix, when set, is required of the extracted git URL.
	GitURLPrefix string

	// StepTimeout bounds each transition. Default 30s.
	StepTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Driver runs UI flows against the document host. Each flow launches
// its own page; a Driver holds no session between calls.
type Driver struct {
	launcher     Launcher
	urls         URLs
	selectors    Selectors
	gitURLPrefix string
	stepTimeout  time.Duration
	logger       *slog.Logger
}

// NewDriver creates a Driver.
func NewDriver(config Config) (*Driver, error) {
	if config.Launcher == nil {
		return nil, fmt.Errorf("session: launcher is required")
	}
	driver := &Driver{
		launcher:     config.Launcher,
		gitURLPrefix: config.GitURLPrefix,
		stepTimeout:  config.StepTimeout,
		logger:       config.Logger,
	}
	if config.URLs != nil {
		driver.urls = *config.URLs
	} else {
		driver.urls = DefaultURLs()
	}
	if config.Selectors != nil {
		driver.selectors = *config.Selectors
	} else {
		driver.selectors = DefaultSelectors()
	}
	if driver.stepTimeout <= 0 {
		driver.stepTimeout = defaultStepTimeout
	}
	if driver.logger == nil {
		driver.logger = slog.Default()
	}
	return driver, nil
}

// Result is the only output of a flow.
type Result struct {
	State    State           `json:"state"`
	Endpoint remote.Endpoint `json:"endpoint,omitzero"`

	// Err is set when State is Failed.
	Err *StageError `json:"-"`

	// ManualURL is where an operator can finish the flow by hand.
	ManualURL string `json:"manual_url,omitempty"`

	// Trace lists every state the flow entered, in order.
	Trace []State `json:"trace"`
}

// OK reports whether the flow reached Done.
func (r Result) OK() bool { return r.State == Done }

// Error returns the failure as an error, or nil.
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// step is one transition of a flow.
type step struct {
	to   State
	kind error
	run  func(ctx context.Context, page Page) error
}

// Provision logs in with credentials, creates a blank project named
// projectName, and returns its endpoint.
func (d *Driver) Provision(ctx context.Context, credentials credential.Credentials, projectName string) Result {
	var projectURL, gitURL string
	selectors := d.selectors

	steps := []step{
		{to: LoggedIn, kind: ErrLoginFailed, run: func(ctx context.Context, page Page) error {
			return d.login(ctx, page, credentials)
		}},
		{to: ProjectCreated, kind: ErrCreationFailed, run: func(ctx context.Context, page Page) error {
			if err := page.Navigate(ctx, d.urls.NewProject); err != nil {
				return err
			}
			if err := page.WaitVisible(ctx, selectors.BlankProject); err != nil {
				return err
			}
			if err := page.Click(ctx, selectors.BlankProject); err != nil {
				return err
			}
			if err := page.WaitVisible(ctx, selectors.ProjectName); err != nil {
				return err
			}
			if err := page.Fill(ctx, selectors.ProjectName, projectName); err != nil {
				return err
			}
			if err := page.Click(ctx, selectors.Create); err != nil {
				return err
			}
			url, err := page.WaitURL(ctx, func(url string) bool {
				return d.urls.Editor.Match(url) && !sameURL(url, d.urls.NewProject)
			})
			if err != nil {
				return fmt.Errorf("waiting for editor: %w", err)
			}
			projectURL = url
			return nil
		}},
		{to: EndpointExtracted, kind: ErrEndpointNotFound, run: func(ctx context.Context, page Page) error {
			if err := page.Click(ctx, selectors.Menu); err != nil {
				return err
			}
			if err := page.Click(ctx, selectors.GitMenuItem); err != nil {
				return err
			}
			if err := page.WaitVisible(ctx, selectors.GitPanel); err != nil {
				return err
			}
			value, err := page.Attribute(ctx, selectors.GitURLInput, "value")
			if err != nil {
				return err
			}
			value = strings.TrimSpace(value)
			if d.gitURLPrefix != "" && !strings.HasPrefix(value, d.gitURLPrefix) {
				return fmt.Errorf("git URL %q does not start with %q", value, d.gitURLPrefix)
			}
			if err := remote.ValidateGitURL(value); err != nil {
				return err
			}
			gitURL = value
			return nil
		}},
	}

	logger := d.logger.With("flow", "provision", "project", projectName)
	result := d.run(ctx, logger, d.urls.NewProject, steps)
	if result.OK() {
		viewURL := remote.ViewURLFor(d.urls.ProjectView, gitURL)
		if viewURL == "" {
			viewURL = projectURL
		}
		result.Endpoint = remote.Endpoint{ProjectName: projectName, GitURL: gitURL, ViewURL: viewURL}
		result.ManualURL = ""
		logger.Info("provisioned project", "git_url", gitURL, "view_url", viewURL)
	}
	return result
}

// Register signs up credentials as a new host account.
func (d *Driver) Register(ctx context.Context, credentials credential.Credentials) Result {
	selectors := d.selectors
	steps := []step{
		{to: Registered, kind: ErrRegistrationFailed, run: func(ctx context.Context, page Page) error {
			if err := page.Navigate(ctx, d.urls.Register); err != nil {
				return err
			}
			if err := page.Fill(ctx, selectors.Email, credentials.Principal); err != nil {
				return err
			}
			if !selectors.ConfirmEmail.IsZero() {
				if err := page.Fill(ctx, selectors.ConfirmEmail, credentials.Principal); err != nil {
					return err
				}
			}
			if err := page.Fill(ctx, selectors.Password, credentials.Secret); err != nil {
				return err
			}
			if err := page.Click(ctx, selectors.Submit); err != nil {
				return err
			}
			_, err := page.WaitURL(ctx, d.urls.Registered.Match)
			return err
		}},
	}
	logger := d.logger.With("flow", "register", "principal", credentials.Principal)
	return d.run(ctx, logger, d.urls.Register, steps)
}

// Visit opens url, such as an email verification link, and waits for
// it to load.
func (d *Driver) Visit(ctx context.Context, url string) Result {
	steps := []step{
		{to: Done, kind: ErrVisitFailed, run: func(ctx context.Context, page Page) error {
			return page.Navigate(ctx, url)
		}},
	}
	return d.run(ctx, d.logger.With("flow", "visit"), url, steps)
}

func (d *Driver) login(ctx context.Context, page Page, credentials credential.Credentials) error {
	if err := page.Navigate(ctx, d.urls.Login); err != nil {
		return err
	}
	if err := page.Fill(ctx, d.selectors.Email, credentials.Principal); err != nil {
		return err
	}
	if err := page.Fill(ctx, d.selectors.Password, credentials.Secret); err != nil {
		return err
	}
	if err := page.Click(ctx, d.selectors.Submit); err != nil {
		return err
	}
	if _, err := page.WaitURL(ctx, d.urls.Dashboard.Match); err != nil {
		return fmt.Errorf("waiting for dashboard: %w", err)
	}
	return nil
}

// run launches a page, applies steps in order, and always closes the
// page. A flow that completes every step ends in Done.
func (d *Driver) run(ctx context.Context, logger *slog.Logger, manualURL string, steps []step) Result {
	result := Result{State: Start, ManualURL: manualURL, Trace: []State{Start}}

	page, err := d.launch(ctx)
	if err != nil {
		if page != nil {
			closePage(logger, page)
		}
		return d.failed(logger, result, ErrLaunchFailed, err)
	}
	defer closePage(logger, page)

	for _, next := range steps {
		if err := d.transition(ctx, page, next); err != nil {
			return d.failed(logger, result, next.kind, err)
		}
		result.State = next.to
		result.Trace = append(result.Trace, next.to)
		logger.Debug("session transition", "state", string(next.to))
	}
	if result.State != Done {
		result.State = Done
		result.Trace = append(result.Trace, Done)
	}
	return result
}

func (d *Driver) launch(ctx context.Context) (page Page, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	launchCtx, cancel := context.WithTimeout(ctx, d.stepTimeout)
	defer cancel()
	return d.launcher.Launch(launchCtx)
}

// transition runs one step under the step timeout, converting a panic
// in the page implementation into an error.
func (d *Driver) transition(ctx context.Context, page Page, next step) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	stepCtx, cancel := context.WithTimeout(ctx, d.stepTimeout)
	defer cancel()
	return next.run(stepCtx, page)
}

// closePage closes page, logging a close error or panic. The flow's
// result stands either way.
func closePage(logger *slog.Logger, page Page) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Warn("closing browser page", "error", fmt.Sprintf("panic: %v", recovered))
		}
	}()
	if err := page.Close(); err != nil {
		logger.Warn("closing browser page", "error", err)
	}
}

func (d *Driver) failed(logger *slog.Logger, result Result, kind error, cause error) Result {
	stageError := &StageError{Stage: result.State, Kind: kind, Cause: cause}
	result.Err = stageError
	result.State = Failed
	result.Trace = append(result.Trace, Failed)
	logger.Warn("session flow failed", "stage", string(stageError.Stage), "error", stageError)
	return result
}

func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
