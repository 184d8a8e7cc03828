// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity implements "papersync identity", which bootstraps a
// throwaway host account from a disposable mailbox.
package identity

import (
	"context"
	"io"
	"log/slog"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	"github.com/bureau-foundation/papersync/lib/config"
	"github.com/bureau-foundation/papersync/lib/credential"
	"github.com/bureau-foundation/papersync/lib/session"
)

// registrar is the part of the session driver identity creation uses.
type registrar interface {
	Register(ctx context.Context, credentials credential.Credentials) session.Result
	Visit(ctx context.Context, url string) session.Result
}

type dependencies struct {
	newRegistrar func(cfg *config.Config, logger *slog.Logger) (registrar, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		newRegistrar: func(cfg *config.Config, logger *slog.Logger) (registrar, error) {
			driver, err := cli.NewDriver(cfg, logger)
			if err != nil {
				return nil, err
			}
			return driver, nil
		},
	}
}

// Command returns the "identity" parent command with all subcommands.
func Command(out io.Writer) *cli.Command {
	return commandWith(out, defaultDependencies())
}

func commandWith(out io.Writer, deps dependencies) *cli.Command {
	return &cli.Command{
		Name:    "identity",
		Summary: "Create throwaway host accounts",
		Description: `Create a disposable mailbox and, optionally, a host account bound to it.

Intended for testing the automatic publish path without a personal
account. The printed export lines set OVERLEAF_EMAIL and
OVERLEAF_PASSWORD for "papersync publish --auto".`,
		Subcommands: []*cli.Command{
			createCommand(out, deps),
		},
		Examples: []cli.Example{
			{
				Description: "Create, register and verify a test account, then load it into the shell",
				Command:     "eval \"$(papersync identity create --register | grep ^export)\"",
			},
		},
	}
}
