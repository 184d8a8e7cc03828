// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	"github.com/bureau-foundation/papersync/cmd/papersync/cli/doctor"
)

func fakeProbes(environment map[string]string) probes {
	return probes{
		gitVersion:  func(context.Context) (string, error) { return "git version 2.43.0\n", nil },
		findBrowser: func() (string, error) { return "", errors.New("not found") },
		environment: environment,
	}
}

// writeConfig writes a configuration whose registry lives in a
// directory that does not exist yet.
func writeConfig(t *testing.T) (configPath, registryDir string) {
	t.Helper()
	dir := t.TempDir()
	registryDir = filepath.Join(dir, "state", "papersync")
	configPath = filepath.Join(dir, "papersync.yaml")
	content := "paths:\n  registry: " + filepath.Join(registryDir, "registry.json") + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return configPath, registryDir
}

func execute(t *testing.T, probe probes, args ...string) (doctor.JSONOutput, error) {
	t.Helper()
	var out bytes.Buffer
	err := commandWith(&out, probe).Execute(context.Background(), append(args, "--json"))
	var report doctor.JSONOutput
	if decodeErr := json.Unmarshal(out.Bytes(), &report); decodeErr != nil {
		t.Fatalf("decoding report: %v\n%s", decodeErr, out.String())
	}
	return report, err
}

func statusOf(report doctor.JSONOutput, name string) doctor.Status {
	for _, check := range report.Checks {
		if check.Name == name {
			return check.Status
		}
	}
	return ""
}

func TestDoctor_MissingRegistryDirectory(t *testing.T) {
	configPath, registryDir := writeConfig(t)

	report, err := execute(t, fakeProbes(map[string]string{}), "--config", configPath)
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("error = %v, want exit code 1", err)
	}
	if report.OK {
		t.Error("OK = true with a missing registry directory")
	}
	want := map[string]doctor.Status{
		"git":         doctor.StatusPass,
		"config":      doctor.StatusPass,
		"browser":     doctor.StatusWarn,
		"registry":    doctor.StatusFail,
		"credentials": doctor.StatusWarn,
	}
	for name, status := range want {
		if got := statusOf(report, name); got != status {
			t.Errorf("%s: status = %q, want %q", name, got, status)
		}
	}
	if _, err := os.Stat(registryDir); !os.IsNotExist(err) {
		t.Error("registry directory created without --fix")
	}
}

func TestDoctor_FixCreatesRegistryDirectory(t *testing.T) {
	configPath, registryDir := writeConfig(t)
	probe := fakeProbes(map[string]string{
		"OVERLEAF_EMAIL":    "writer@example.com",
		"OVERLEAF_PASSWORD": "s3cret",
	})

	report, err := execute(t, probe, "--config", configPath, "--fix")
	if err != nil {
		t.Fatalf("error = %v, want nil after fixing", err)
	}
	if !report.OK {
		t.Errorf("report = %+v, want OK", report)
	}
	if got := statusOf(report, "registry"); got != doctor.StatusFixed {
		t.Errorf("registry status = %q, want fixed", got)
	}
	if got := statusOf(report, "credentials"); got != doctor.StatusPass {
		t.Errorf("credentials status = %q, want pass", got)
	}
	info, err := os.Stat(registryDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("registry directory not created: %v", err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("registry directory mode = %v, want 0700", info.Mode().Perm())
	}
}

func TestDoctor_DryRunChangesNothing(t *testing.T) {
	configPath, registryDir := writeConfig(t)

	report, _ := execute(t, fakeProbes(map[string]string{}), "--config", configPath, "--fix", "--dry-run")
	if !report.DryRun {
		t.Error("DryRun = false")
	}
	if _, err := os.Stat(registryDir); !os.IsNotExist(err) {
		t.Error("registry directory created in dry-run mode")
	}
}

func TestDoctor_InvalidConfigSkipsDependentChecks(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "papersync.yaml")
	if err := os.WriteFile(configPath, []byte("mail:\n  poll_interval: 10s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	report, err := execute(t, fakeProbes(map[string]string{}), "--config", configPath)
	if err == nil {
		t.Fatal("error = nil, want exit code 1")
	}
	if got := statusOf(report, "config"); got != doctor.StatusFail {
		t.Errorf("config status = %q, want fail", got)
	}
	for _, check := range report.Checks {
		if check.Name == "config" && !strings.Contains(check.Message, "mail.poll_interval") {
			t.Errorf("config message = %q, want mention of mail.poll_interval", check.Message)
		}
	}
	if got := statusOf(report, "registry"); got != doctor.StatusSkip {
		t.Errorf("registry status = %q, want skip", got)
	}
}

func TestDoctor_GitMissing(t *testing.T) {
	configPath, _ := writeConfig(t)
	probe := fakeProbes(map[string]string{})
	probe.gitVersion = func(context.Context) (string, error) { return "", errors.New(`exec: "git": executable file not found in $PATH`) }

	report, _ := execute(t, probe, "--config", configPath)
	if got := statusOf(report, "git"); got != doctor.StatusFail {
		t.Errorf("git status = %q, want fail", got)
	}
}
