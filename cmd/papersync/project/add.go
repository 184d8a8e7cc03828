// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	"github.com/bureau-foundation/papersync/lib/registry"
	"github.com/bureau-foundation/papersync/lib/remote"
)

type addParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	ViewURL string `json:"view_url" flag:"view-url" desc:"project page URL (default: derived from a host git URL)"`
}

func addCommand(out io.Writer) *cli.Command {
	var params addParams

	return &cli.Command{
		Name:    "add",
		Summary: "Register a project's git URL",
		Description: `Record the git URL of a hosted project under a name.

Adding a name again with the same URL is a no-op. A name already bound to
a different URL is rejected; edit the registry file to rebind it.`,
		Usage: "papersync project add <name> <git-url> [flags]",
		Examples: []cli.Example{
			{
				Description: "Register a project",
				Command:     "papersync project add paper-x https://git.overleaf.com/64f0c0ffee",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return cli.Validation("usage: papersync project add <name> <git-url>")
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}

			endpoint := remote.Endpoint{
				ProjectName: args[0],
				GitURL:      args[1],
				ViewURL:     params.ViewURL,
			}
			if endpoint.ViewURL == "" && cfg.Host.GitURLPrefix != "" && strings.HasPrefix(endpoint.GitURL, cfg.Host.GitURLPrefix) {
				endpoint.ViewURL = remote.ViewURLFor(cfg.Host.ProjectViewURL, endpoint.GitURL)
			}
			if err := endpoint.Validate(); err != nil {
				return cli.Validation("%w", err)
			}

			projects, err := cli.OpenRegistry(cfg, logger)
			if err != nil {
				return err
			}
			if err := projects.Add(endpoint); err != nil {
				if errors.Is(err, registry.ErrDuplicateProject) {
					return cli.Conflict("%w", err)
				}
				return cli.Internal("%w", err)
			}

			if done, err := params.EmitJSON(out, endpoint); done {
				return err
			}
			fmt.Fprintf(out, "Registered %s -> %s\n", endpoint.ProjectName, endpoint.GitURL)
			return nil
		},
	}
}
