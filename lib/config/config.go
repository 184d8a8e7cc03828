// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "PAPERSYNC_CONFIG"

// maxPollInterval mirrors the mail client's ceiling.
const maxPollInterval = 3 * time.Second

// Config is the master configuration for papersync.
type Config struct {
	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Host describes the document host's UI and git service.
	Host HostConfig `yaml:"host"`

	// Mail configures the disposable mailbox provider.
	Mail MailConfig `yaml:"mail"`

	// Timeouts bound every external call.
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Git overrides the commit identity.
	Git GitConfig `yaml:"git"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// Registry is the project registry file.
	// Default: ${HOME}/.overleaf_sync.json
	Registry string `yaml:"registry"`
}

// HostConfig describes the document host.
type HostConfig struct {
	LoginURL      string `yaml:"login_url"`
	RegisterURL   string `yaml:"register_url"`
	NewProjectURL string `yaml:"new_project_url"`

	// ProjectViewURL is the prefix of a project's browser URL.
	ProjectViewURL string `yaml:"project_view_url"`

	// URL globs ("**" any, "*" one path segment) marking the end of
	// each UI step.
	DashboardPattern  string `yaml:"dashboard_pattern"`
	EditorPattern     string `yaml:"editor_pattern"`
	RegisteredPattern string `yaml:"registered_pattern"`

	// GitURLPrefix is required of every extracted git URL.
	GitURLPrefix string `yaml:"git_url_prefix"`

	// RemoteName is the git remote reserved for the host.
	// Default: overleaf
	RemoteName string `yaml:"remote_name"`

	// Branch is the remote branch the host builds from.
	// Default: master
	Branch string `yaml:"branch"`

	Browser BrowserConfig `yaml:"browser"`

	// Selectors override individual UI selectors by name (email,
	// password, submit, blank_project, project_name, create, menu,
	// git_menu_item, git_panel, git_url_input, confirm_email).
	Selectors map[string]string `yaml:"selectors,omitempty"`
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	// ExecPath is the Chrome or Chromium binary. Empty searches PATH.
	ExecPath string `yaml:"exec_path"`

	// Headed shows the browser window, for debugging selectors.
	Headed bool `yaml:"headed"`
}

// MailConfig configures the disposable mailbox provider.
type MailConfig struct {
	BaseURL string `yaml:"base_url"`

	// PollInterval is the inbox re-check interval, at most 3s.
	PollInterval time.Duration `yaml:"poll_interval"`

	// VerifyTimeout bounds the wait for a verification mail.
	VerifyTimeout time.Duration `yaml:"verify_timeout"`

	// SubjectMatch are case-insensitive subject terms of the
	// verification mail.
	SubjectMatch []string `yaml:"subject_match"`

	// LinkPattern is a regular expression for the verification link;
	// capture group 1, when present, is the link.
	LinkPattern string `yaml:"link_pattern"`
}

// TimeoutsConfig bounds external calls. Durations use Go syntax
// ("30s", "2m").
type TimeoutsConfig struct {
	BrowserStep time.Duration `yaml:"browser_step"`
	GitLocal    time.Duration `yaml:"git_local"`
	GitNetwork  time.Duration `yaml:"git_network"`
	MailRequest time.Duration `yaml:"mail_request"`
}

// GitConfig overrides the commit identity. Both fields or neither.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Default returns the default configuration. Load and LoadFile start
// from it, so a file only needs the values it changes.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Registry: "${HOME}/.overleaf_sync.json",
		},
		Host: HostConfig{
			LoginURL:          "https://www.overleaf.com/login",
			RegisterURL:       "https://www.overleaf.com/register",
			NewProjectURL:     "https://www.overleaf.com/project/new",
			ProjectViewURL:    "https://www.overleaf.com/project",
			DashboardPattern:  "**/project",
			EditorPattern:     "**/project/*",
			RegisteredPattern: "**/project**",
			GitURLPrefix:      "https://git.overleaf.com/",
			RemoteName:        "overleaf",
			Branch:            "master",
		},
		Mail: MailConfig{
			BaseURL:       "https://api.mail.tm",
			PollInterval:  3 * time.Second,
			VerifyTimeout: 60 * time.Second,
			SubjectMatch:  []string{"overleaf", "verify"},
			LinkPattern:   `href="(https://www\.overleaf\.com/verify[^"]+)"`,
		},
		Timeouts: TimeoutsConfig{
			BrowserStep: 30 * time.Second,
			GitLocal:    30 * time.Second,
			GitNetwork:  2 * time.Minute,
			MailRequest: 15 * time.Second,
		},
	}
}

// Load loads configuration from the file named by PAPERSYNC_CONFIG, or
// returns the expanded defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, layered over
// Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	home, _ := os.UserHomeDir()
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" && home != "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	vars := map[string]string{
		"HOME":            home,
		"XDG_CONFIG_HOME": xdgConfig,
	}

	c.Paths.Registry = expandVars(c.Paths.Registry, vars)
	c.Host.Browser.ExecPath = expandVars(c.Host.Browser.ExecPath, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Registry == "" {
		errs = append(errs, fmt.Errorf("paths.registry is required"))
	}

	for _, field := range []struct {
		name, value string
	}{
		{"host.login_url", c.Host.LoginURL},
		{"host.register_url", c.Host.RegisterURL},
		{"host.new_project_url", c.Host.NewProjectURL},
		{"host.project_view_url", c.Host.ProjectViewURL},
		{"mail.base_url", c.Mail.BaseURL},
	} {
		if err := validateURL(field.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		}
	}

	for _, field := range []struct {
		name, value string
	}{
		{"host.dashboard_pattern", c.Host.DashboardPattern},
		{"host.editor_pattern", c.Host.EditorPattern},
		{"host.registered_pattern", c.Host.RegisteredPattern},
		{"host.remote_name", c.Host.RemoteName},
		{"host.branch", c.Host.Branch},
	} {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field.name))
		}
	}

	if c.Mail.PollInterval <= 0 || c.Mail.PollInterval > maxPollInterval {
		errs = append(errs, fmt.Errorf("mail.poll_interval must be in (0, %s], got %s", maxPollInterval, c.Mail.PollInterval))
	}
	if c.Mail.VerifyTimeout < 0 {
		errs = append(errs, fmt.Errorf("mail.verify_timeout must not be negative"))
	}
	if len(c.Mail.SubjectMatch) == 0 {
		errs = append(errs, fmt.Errorf("mail.subject_match needs at least one term"))
	}
	if _, err := regexp.Compile(c.Mail.LinkPattern); err != nil || c.Mail.LinkPattern == "" {
		errs = append(errs, fmt.Errorf("mail.link_pattern is not a valid regular expression"))
	}

	for _, field := range []struct {
		name  string
		value time.Duration
	}{
		{"timeouts.browser_step", c.Timeouts.BrowserStep},
		{"timeouts.git_local", c.Timeouts.GitLocal},
		{"timeouts.git_network", c.Timeouts.GitNetwork},
		{"timeouts.mail_request", c.Timeouts.MailRequest},
	} {
		if field.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", field.name))
		}
	}

	if (c.Git.AuthorName == "") != (c.Git.AuthorEmail == "") {
		errs = append(errs, fmt.Errorf("git.author_name and git.author_email must be set together"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}

// EnsurePaths creates the directories configured files live in.
func (c *Config) EnsurePaths() error {
	directory := filepath.Dir(c.Paths.Registry)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}

// BrowserPath returns the configured browser binary, resolved through
// PATH when it is a bare name. Returns "" when none is configured.
func (c *Config) BrowserPath() (string, error) {
	if c.Host.Browser.ExecPath == "" {
		return "", nil
	}
	if filepath.IsAbs(c.Host.Browser.ExecPath) {
		if _, err := os.Stat(c.Host.Browser.ExecPath); err != nil {
			return "", fmt.Errorf("browser %s: %w", c.Host.Browser.ExecPath, err)
		}
		return c.Host.Browser.ExecPath, nil
	}
	path, err := exec.LookPath(c.Host.Browser.ExecPath)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", c.Host.Browser.ExecPath)
	}
	return path, nil
}
