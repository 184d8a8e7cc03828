// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"io"
	"log/slog"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	"github.com/bureau-foundation/papersync/lib/gitsync"
	libpublish "github.com/bureau-foundation/papersync/lib/publish"
)

type publishParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	Name     string `json:"name"  flag:"name,n"   desc:"project name on the host (default: content directory name)"`
	Auto     bool   `json:"auto"  flag:"auto"     desc:"create the project in a browser session when it is not registered"`
	Email    string `json:"email" flag:"email"    desc:"host account email (default: $OVERLEAF_EMAIL)"`
	Password string `json:"-"     flag:"password" desc:"host account password (default: $OVERLEAF_PASSWORD)"`
}

// Command returns the "publish" command.
func Command(out io.Writer) *cli.Command {
	var params publishParams

	return &cli.Command{
		Name:    "publish",
		Summary: "Publish a content directory to its hosted project",
		Description: `Push a generated paper directory to its hosted LaTeX project.

A project already in the registry is synced directly. With --auto, an
unregistered project is created on the host in a headless browser
session using the account from --email/--password or the
OVERLEAF_EMAIL/OVERLEAF_PASSWORD environment variables; its git URL is
recorded in the registry and the directory is pushed. Without --auto, or
when automatic setup fails, the command prints the steps to create the
project by hand and register it.

Exits 0 when the directory was synced or manual setup is required, and 1
when the push failed.`,
		Usage: "papersync publish <content-dir> [flags]",
		Examples: []cli.Example{
			{
				Description: "Publish a registered project",
				Command:     "papersync publish ./papers/attention-survey",
			},
			{
				Description: "Create the project on the host if needed, then publish",
				Command:     "papersync publish ./papers/attention-survey --auto --name 'Attention Survey'",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: papersync publish <content-dir> [flags]")
			}
			mode := libpublish.RegistryOnly
			if params.Auto {
				mode = libpublish.AutomaticThenManual
			}
			return run(ctx, out, logger, &params.GlobalFlags, &params.JSONOutput, libpublish.Request{
				ProjectName: params.Name,
				Mode:        mode,
				Principal:   params.Email,
				Secret:      params.Password,
			}, args[0])
		},
	}
}

// run publishes dir and reports the outcome. It is shared by publish
// and sync.
func run(ctx context.Context, out io.Writer, logger *slog.Logger, globals *cli.GlobalFlags, output *cli.JSONOutput, request libpublish.Request, dir string) error {
	snapshot, err := gitsync.NewSnapshot(dir)
	if err != nil {
		return cli.Validation("%w", err)
	}
	request.Snapshot = snapshot

	cfg, err := globals.LoadConfig()
	if err != nil {
		return err
	}

	orchestrator, _, err := cli.NewOrchestrator(cfg, logger, cli.OrchestratorOptions{
		Automatic: request.Mode == libpublish.AutomaticThenManual,
	})
	if err != nil {
		return err
	}

	outcome := orchestrator.Publish(ctx, request)

	if done, err := output.EmitJSON(out, outcome); done {
		if err != nil {
			return err
		}
		return exitStatus(outcome)
	}
	if err := printOutcome(out, outcome); err != nil {
		return err
	}
	return exitStatus(outcome)
}

func exitStatus(outcome libpublish.Outcome) error {
	if outcome.Kind == libpublish.SyncFailed {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
