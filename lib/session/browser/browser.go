// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package browser implements session.Launcher with a headless Chrome
// driven over the DevTools protocol by chromedp.
//
// Each Launch starts a dedicated browser process with one tab. Page
// operations run on the tab's context but are bounded by the caller's
// context, so a step timeout interrupts the action without killing the
// browser. Close tears the process down.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/bureau-foundation/papersync/lib/clock"
	"github.com/bureau-foundation/papersync/lib/session"
)

const (
	defaultWidth        = 1280
	defaultHeight       = 720
	defaultPollInterval = 250 * time.Millisecond
)

// Config holds configuration for a Launcher.
type Config struct {
	// ExecPath is the Chrome or Chromium binary. Empty lets chromedp
	// search its usual locations.
	ExecPath string

	// Headed shows the browser window. The default is headless.
	Headed bool

	// Width and Height set the window size. Default 1280x720.
	Width  int
	Height int

	// PollInterval is how often URL and text-filtered element waits
	// re-check the page. Default 250ms.
	PollInterval time.Duration

	// Clock drives polling. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives chromedp's diagnostics at debug level. Defaults
	// to slog.Default().
	Logger *slog.Logger
}

// Launcher starts Chrome processes.
type Launcher struct {
	config Config
}

var _ session.Launcher = (*Launcher)(nil)

// NewLauncher creates a Launcher with defaults applied.
func NewLauncher(config Config) *Launcher {
	if config.Width <= 0 {
		config.Width = defaultWidth
	}
	if config.Height <= 0 {
		config.Height = defaultHeight
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Launcher{config: config}
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	options = append(options, chromedp.WindowSize(l.config.Width, l.config.Height))
	if l.config.Headed {
		options = append(options, chromedp.Flag("headless", false))
	}
	if l.config.ExecPath != "" {
		options = append(options, chromedp.ExecPath(l.config.ExecPath))
	}
	return options
}

// Launch starts a browser and returns its first tab. ctx bounds only
// the startup.
func (l *Launcher) Launch(ctx context.Context) (session.Page, error) {
	logger := l.config.Logger
	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "source", "chromedp")
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "source", "chromedp", "level", "error")
		}),
	)

	chromedp.ListenTarget(browserCtx, logPageEvent(logger))

	tab := &page{
		browserCtx:      browserCtx,
		cancelBrowser:   cancelBrowser,
		cancelAllocator: cancelAllocator,
		clock:           l.config.Clock,
		pollInterval:    l.config.PollInterval,
	}

	// The first Run allocates the browser and ties its lifetime to the
	// context it runs on, so it must run on browserCtx itself rather
	// than a deadline-bound child.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()
	select {
	case err := <-started:
		if err != nil {
			tab.Close()
			return nil, fmt.Errorf("starting browser: %w", err)
		}
	case <-ctx.Done():
		tab.Close()
		<-started
		return nil, fmt.Errorf("starting browser: %w", ctx.Err())
	}
	logger.Debug("browser started", "headless", !l.config.Headed)
	return tab, nil
}

// logPageEvent reports uncaught exceptions in the page at debug level.
func logPageEvent(logger *slog.Logger) func(event any) {
	return func(event any) {
		thrown, ok := event.(*cdpruntime.EventExceptionThrown)
		if !ok || thrown.ExceptionDetails == nil {
			return
		}
		details := thrown.ExceptionDetails
		message := details.Text
		if details.Exception != nil && details.Exception.Description != "" {
			message = details.Exception.Description
		}
		logger.Debug("page exception",
			"source", "page",
			"message", message,
			"url", details.URL,
			"line", details.LineNumber,
		)
	}
}

// candidateExecutables are the binary names tried by FindExecPath, in
// order.
var candidateExecutables = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// FindExecPath returns the first Chrome-family binary found on PATH or
// in the platform's standard install location.
func FindExecPath() (string, error) {
	for _, name := range candidateExecutables {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	var platformPaths []string
	switch runtime.GOOS {
	case "darwin":
		platformPaths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		platformPaths = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	}
	for _, path := range platformPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.New("no Chrome or Chromium executable found")
}
