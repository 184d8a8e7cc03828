// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
)

type listParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func listCommand(out io.Writer) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List registered projects",
		Usage:   "papersync project list [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			projects, err := cli.OpenRegistry(cfg, logger)
			if err != nil {
				return err
			}

			names := projects.Names()
			entries := make([]listEntry, 0, len(names))
			for _, name := range names {
				entry, _ := projects.Lookup(name)
				entries = append(entries, listEntry{
					Name:      name,
					GitURL:    entry.GitURL,
					ViewURL:   entry.ViewURL,
					CreatedAt: entry.CreatedAt.Format(time.RFC3339),
				})
			}

			if done, err := params.EmitJSON(out, entries); done {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "No projects registered in %s\n", projects.Path())
				return nil
			}

			writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tGIT URL\tCREATED")
			for _, entry := range entries {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", entry.Name, entry.GitURL, entry.CreatedAt)
			}
			return writer.Flush()
		},
	}
}
