// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Name     string        `flag:"name" desc:"the name"`
		Auto     bool          `flag:"auto,a" desc:"provision automatically"`
		Count    int           `flag:"count" desc:"number of items"`
		Timeout  time.Duration `flag:"timeout" desc:"request timeout"`
		Terms    []string      `flag:"terms" desc:"subject terms"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--name", "paper-x",
		"-a",
		"--count", "3",
		"--timeout", "45s",
		"--terms", "overleaf,verify",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Name != "paper-x" {
		t.Errorf("Name = %q, want %q", p.Name, "paper-x")
	}
	if !p.Auto {
		t.Error("Auto = false, want true")
	}
	if p.Count != 3 {
		t.Errorf("Count = %d, want 3", p.Count)
	}
	if p.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", p.Timeout)
	}
	if len(p.Terms) != 2 || p.Terms[0] != "overleaf" || p.Terms[1] != "verify" {
		t.Errorf("Terms = %v, want [overleaf verify]", p.Terms)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Branch  string        `flag:"branch" default:"master"`
		Retries int           `flag:"retries" default:"2"`
		Timeout time.Duration `flag:"timeout" default:"1m"`
		Headed  bool          `flag:"headed" default:"true"`
		Terms   []string      `flag:"terms" default:"x,y"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Branch != "master" || p.Retries != 2 || p.Timeout != time.Minute || !p.Headed {
		t.Errorf("defaults not applied: %+v", p)
	}
	if len(p.Terms) != 2 || p.Terms[0] != "x" {
		t.Errorf("Terms = %v, want [x y]", p.Terms)
	}
}

func TestBindFlags_EmbeddedGlobals(t *testing.T) {
	type params struct {
		GlobalFlags
		JSONOutput
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--config", "/etc/papersync.yaml", "--json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.ConfigPath != "/etc/papersync.yaml" {
		t.Errorf("ConfigPath = %q", p.ConfigPath)
	}
	if !p.OutputJSON {
		t.Error("OutputJSON = false, want true")
	}
	if flagSet.ShorthandLookup("v") == nil {
		t.Error("-v shorthand not bound")
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notPointer struct{}
	if err := BindFlags(notPointer, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags(struct value) = nil, want error")
	}

	type unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	err := BindFlags(&unsupported{}, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("BindFlags(float32) error = %v, want unsupported type", err)
	}

	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	err = BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "--count") {
		t.Errorf("BindFlags(bad default) error = %v, want mention of --count", err)
	}
}
