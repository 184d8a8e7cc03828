// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"io"
	"log/slog"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	libpublish "github.com/bureau-foundation/papersync/lib/publish"
)

type syncParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

// SyncCommand returns the "sync" command: publish restricted to
// registered projects.
func SyncCommand(out io.Writer) *cli.Command {
	var params syncParams

	return &cli.Command{
		Name:    "sync",
		Summary: "Push a content directory to a registered project",
		Description: `Commit the content directory and push it to the project's git URL
from the registry. The project name defaults to the directory name.

Never opens a browser. An unregistered project is reported with the
steps to register it.`,
		Usage: "papersync sync <content-dir> [name] [flags]",
		Examples: []cli.Example{
			{
				Description: "Sync a directory registered under its own name",
				Command:     "papersync sync ./papers/attention-survey",
			},
			{
				Description: "Sync a directory registered under another name",
				Command:     "papersync sync ./build/paper 'Attention Survey'",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 1 || len(args) > 2 {
				return cli.Validation("usage: papersync sync <content-dir> [name]")
			}
			request := libpublish.Request{Mode: libpublish.RegistryOnly}
			if len(args) == 2 {
				request.ProjectName = args[1]
			}
			return run(ctx, out, logger, &params.GlobalFlags, &params.JSONOutput, request, args[0])
		},
	}
}
