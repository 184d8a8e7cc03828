// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli/doctor"
	"github.com/bureau-foundation/papersync/lib/config"
	"github.com/bureau-foundation/papersync/lib/credential"
	"github.com/bureau-foundation/papersync/lib/git"
	"github.com/bureau-foundation/papersync/lib/registry"
	"github.com/bureau-foundation/papersync/lib/session/browser"
)

// probes are the environment lookups the checks make.
type probes struct {
	gitVersion  func(ctx context.Context) (string, error)
	findBrowser func() (string, error)
	environment map[string]string
}

func defaultProbes() probes {
	return probes{
		gitVersion: func(ctx context.Context) (string, error) {
			return git.NewRepository(".").Run(ctx, "--version")
		},
		findBrowser: browser.FindExecPath,
	}
}

// runChecks evaluates every check. cfg is nil when loading the
// configuration failed with configErr.
func runChecks(ctx context.Context, cfg *config.Config, configErr error, probe probes) []doctor.Result {
	results := []doctor.Result{checkGit(ctx, probe)}

	if configErr != nil {
		results = append(results, doctor.Fail("config", configErr.Error()))
		for _, name := range []string{"browser", "registry"} {
			results = append(results, doctor.Skip(name, "skipped: configuration did not load"))
		}
	} else {
		results = append(results,
			doctor.Pass("config", "valid"),
			checkBrowser(cfg, probe),
			checkRegistry(cfg),
		)
	}

	return append(results, checkCredentials(probe))
}

func checkGit(ctx context.Context, probe probes) doctor.Result {
	output, err := probe.gitVersion(ctx)
	if err != nil {
		return doctor.Fail("git", fmt.Sprintf("git is not runnable: %v", err))
	}
	return doctor.Pass("git", strings.TrimSpace(output))
}

func checkBrowser(cfg *config.Config, probe probes) doctor.Result {
	path, err := cfg.BrowserPath()
	if err != nil {
		return doctor.Fail("browser", err.Error())
	}
	if path != "" {
		return doctor.Pass("browser", path)
	}
	path, err = probe.findBrowser()
	if err != nil {
		return doctor.Warn("browser", "no Chrome or Chromium found; publish --auto and identity create --register are unavailable")
	}
	return doctor.Pass("browser", path)
}

func checkRegistry(cfg *config.Config) doctor.Result {
	path := cfg.Paths.Registry
	directory := filepath.Dir(path)
	info, err := os.Stat(directory)
	if os.IsNotExist(err) {
		return doctor.FailWithFix("registry",
			fmt.Sprintf("directory %s does not exist", directory),
			fmt.Sprintf("create %s", directory),
			func(context.Context) error { return cfg.EnsurePaths() })
	}
	if err != nil {
		return doctor.Fail("registry", err.Error())
	}
	if !info.IsDir() {
		return doctor.Fail("registry", fmt.Sprintf("%s is not a directory", directory))
	}

	projects, err := registry.Open(path, registry.Options{})
	if err != nil {
		return doctor.Fail("registry", err.Error())
	}
	return doctor.Pass("registry", fmt.Sprintf("%d project(s) in %s", projects.Len(), path))
}

func checkCredentials(probe probes) doctor.Result {
	credentials, err := credential.Resolver{Environment: probe.environment}.Resolve("", "")
	if err != nil {
		return doctor.Warn("credentials", fmt.Sprintf("%v; publish --auto needs them or --email/--password", err))
	}
	return doctor.Pass("credentials", "account "+credentials.Principal)
}
