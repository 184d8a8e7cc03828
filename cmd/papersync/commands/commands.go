// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete papersync command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	doctorcmd "github.com/bureau-foundation/papersync/cmd/papersync/doctor"
	identitycmd "github.com/bureau-foundation/papersync/cmd/papersync/identity"
	projectcmd "github.com/bureau-foundation/papersync/cmd/papersync/project"
	publishcmd "github.com/bureau-foundation/papersync/cmd/papersync/publish"
	"github.com/bureau-foundation/papersync/lib/version"
)

type versionParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

// Root builds and returns the papersync command tree. Command output is
// written to out; diagnostics go to stderr.
func Root(out io.Writer) *cli.Command {
	return &cli.Command{
		Name: cli.BinaryName,
		Description: `papersync: publish generated LaTeX papers to a hosted editor.

Each content directory is pushed to the git endpoint of a hosted project.
Projects are recorded in a local registry, created by hand or, with
publish --auto, in a headless browser session.`,
		Subcommands: []*cli.Command{
			publishcmd.Command(out),
			publishcmd.SyncCommand(out),
			projectcmd.Command(out),
			identitycmd.Command(out),
			doctorcmd.Command(out),
			versionCommand(out),
		},
		Examples: []cli.Example{
			{
				Description: "Check the environment (start here)",
				Command:     "papersync doctor",
			},
			{
				Description: "Publish a paper, creating its project on the host if needed",
				Command:     "papersync publish ./papers/attention-survey --auto",
			},
			{
				Description: "Register a project created by hand",
				Command:     "papersync project add attention-survey https://git.overleaf.com/64f0c0ffee",
			},
		},
	}
}

func versionCommand(out io.Writer) *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if done, err := params.EmitJSON(out, version.Current()); done {
				return err
			}
			_, err := fmt.Fprintf(out, "%s %s\n", cli.BinaryName, version.Full())
			return err
		},
	}
}
