// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package project implements "papersync project", the commands that
// read and edit the project registry.
package project

import (
	"io"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
)

// Command returns the "project" parent command with all subcommands.
func Command(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "project",
		Summary: "Manage registered projects",
		Description: `Register, list, and inspect hosted projects.

The registry maps a project name to the git URL of its hosted project.
It lives in ~/.overleaf_sync.json unless paths.registry says otherwise,
and may be edited by hand; comments and trailing commas are accepted.`,
		Subcommands: []*cli.Command{
			addCommand(out),
			listCommand(out),
			showCommand(out),
		},
		Examples: []cli.Example{
			{
				Description: "Register a project created by hand",
				Command:     "papersync project add 'Attention Survey' https://git.overleaf.com/64f0c0ffee",
			},
			{
				Description: "List registered projects",
				Command:     "papersync project list",
			},
		},
	}
}

type listEntry struct {
	Name      string `json:"name"`
	GitURL    string `json:"git_url"`
	ViewURL   string `json:"view_url,omitempty"`
	CreatedAt string `json:"created_at"`
}
