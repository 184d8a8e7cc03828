// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	"github.com/bureau-foundation/papersync/cmd/papersync/commands"
	"github.com/bureau-foundation/papersync/lib/process"
)

func main() {
	if err := run(); err != nil {
		process.Exit(err, cli.ExitCodeFor(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(os.Stdout).Execute(ctx, os.Args[1:])
}
