// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"io"
	"log/slog"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	"github.com/bureau-foundation/papersync/cmd/papersync/cli/doctor"
)

type doctorParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	Fix    bool `json:"fix"     flag:"fix"     desc:"repair fixable problems"`
	DryRun bool `json:"dry_run" flag:"dry-run" desc:"with --fix, show what would be repaired without changing anything"`
}

// Command returns the "doctor" command.
func Command(out io.Writer) *cli.Command {
	return commandWith(out, defaultProbes())
}

func commandWith(out io.Writer, probe probes) *cli.Command {
	var params doctorParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check the local environment",
		Description: `Check that this machine can publish: git is runnable, the configuration
is valid, a browser is available for automatic setup, the project
registry is readable, and host credentials are set.

Missing credentials and a missing browser are warnings: registry-only
publishing works without them. Exits 1 when any check fails.`,
		Usage: "papersync doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check and repair",
				Command:     "papersync doctor --fix",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			cfg, configErr := params.LoadConfig()
			results := runChecks(ctx, cfg, configErr, probe)

			var outcome doctor.Outcome
			if params.Fix {
				failedBefore := doctor.FailedNames(results)
				outcome = doctor.ExecuteFixes(ctx, results, params.DryRun)
				if outcome.FixedCount > 0 {
					logger.Debug("re-checking after fixes", "fixed", outcome.FixedCount)
					results = runChecks(ctx, cfg, configErr, probe)
					doctor.MarkRepaired(results, failedBefore)
				}
			}

			report := doctor.BuildJSON(results, params.DryRun, outcome)
			if done, err := params.EmitJSON(out, report); done {
				if err != nil {
					return err
				}
				if !report.OK {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}
			return doctor.PrintChecklist(out, results, params.Fix, params.DryRun, outcome)
		},
	}
}
