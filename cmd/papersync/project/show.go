// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
)

type showParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func showCommand(out io.Writer) *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show one registered project",
		Usage:   "papersync project show <name> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: papersync project show <name>")
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			projects, err := cli.OpenRegistry(cfg, logger)
			if err != nil {
				return err
			}

			name := args[0]
			entry, found := projects.Lookup(name)
			if !found {
				return cli.NotFound("project %q is not registered in %s", name, projects.Path())
			}
			result := listEntry{
				Name:      name,
				GitURL:    entry.GitURL,
				ViewURL:   entry.ViewURL,
				CreatedAt: entry.CreatedAt.Format(time.RFC3339),
			}

			if done, err := params.EmitJSON(out, result); done {
				return err
			}
			fmt.Fprintf(out, "Name:     %s\n", result.Name)
			fmt.Fprintf(out, "Git URL:  %s\n", result.GitURL)
			if result.ViewURL != "" {
				fmt.Fprintf(out, "View URL: %s\n", result.ViewURL)
			}
			fmt.Fprintf(out, "Created:  %s\n", result.CreatedAt)
			return nil
		},
	}
}
