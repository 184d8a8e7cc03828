// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"fmt"
	"io"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	libpublish "github.com/bureau-foundation/papersync/lib/publish"
)

// printOutcome writes the human-readable report of a publish.
func printOutcome(out io.Writer, outcome libpublish.Outcome) error {
	switch outcome.Kind {
	case libpublish.Synced:
		fmt.Fprintf(out, "%s: %s\n", outcome.ProjectName, outcome.Sync)
		if outcome.Source == libpublish.Provisioned {
			fmt.Fprintf(out, "Created the project on the host and registered %s\n", outcome.Endpoint.GitURL)
		}
		if outcome.Endpoint.ViewURL != "" {
			fmt.Fprintf(out, "View: %s\n", outcome.Endpoint.ViewURL)
		}
		return nil

	case libpublish.SyncFailed:
		fmt.Fprintf(out, "%s: sync failed (%s)\n", outcome.ProjectName, outcome.Sync.Outcome)
		if outcome.Sync.Message != "" {
			fmt.Fprintf(out, "\n%s\n", outcome.Sync.Message)
		}
		return nil

	case libpublish.ManualActionRequired:
		return cli.PrintPanel(out, "Manual setup required: "+outcome.ProjectName, outcome.Instructions)

	default:
		return cli.Internal("unexpected publish outcome %q", outcome.Kind)
	}
}
