// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
	"github.com/bureau-foundation/papersync/lib/credential"
	"github.com/bureau-foundation/papersync/lib/mailbox"
	"github.com/bureau-foundation/papersync/lib/session"
)

type createParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	Register      bool          `json:"register"       flag:"register"       desc:"sign the address up on the host and follow the verification mail"`
	VerifyTimeout time.Duration `json:"verify_timeout" flag:"verify-timeout" desc:"how long to wait for the verification mail (default: mail.verify_timeout)"`
}

type createResult struct {
	Address  string                     `json:"address"`
	Password string                     `json:"password"`
	Status   mailbox.VerificationStatus `json:"status"`

	// Registered is set when --register completed the sign-up form.
	Registered        bool   `json:"registered"`
	RegistrationError string `json:"registration_error,omitempty"`

	VerifyLink string `json:"verify_link,omitempty"`
	Visited    bool   `json:"visited,omitempty"`
}

func createCommand(out io.Writer, deps dependencies) *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a disposable identity",
		Description: `Provision an address and password at the disposable mail provider.

With --register, the address is also signed up on the host in a headless
browser session. The command then polls the inbox for the verification
mail and opens its link. A sign-up that does not reach the dashboard is
logged as a warning and the inbox is polled anyway, since the host may
have sent the mail regardless.`,
		Usage: "papersync identity create [flags]",
		Examples: []cli.Example{
			{
				Description: "Only create the mailbox",
				Command:     "papersync identity create",
			},
			{
				Description: "Register on the host and wait up to two minutes for verification",
				Command:     "papersync identity create --register --verify-timeout 2m",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			if params.VerifyTimeout < 0 {
				return cli.Validation("--verify-timeout must not be negative")
			}
			timeout := params.VerifyTimeout
			if timeout == 0 {
				timeout = cfg.Mail.VerifyTimeout
			}

			client, err := cli.NewMailbox(cfg, logger)
			if err != nil {
				return err
			}
			identity, err := client.Acquire(ctx)
			if err != nil {
				return cli.Transient("acquiring disposable identity: %w", err)
			}
			logger = logger.With("address", identity.Address)

			result := createResult{
				Address:  identity.Address,
				Password: identity.Secret,
			}

			if params.Register {
				linkPattern, err := cli.VerifyLinkPattern(cfg)
				if err != nil {
					return err
				}
				driver, err := deps.newRegistrar(cfg, logger)
				if err != nil {
					return err
				}

				registration := driver.Register(ctx, credential.Credentials{
					Principal: identity.Address,
					Secret:    identity.Secret,
				})
				result.Registered = registration.OK()
				if !registration.OK() {
					result.RegistrationError = failureText(registration)
					logger.Warn("registration did not complete, polling for the verification mail anyway",
						"error", result.RegistrationError)
				}

				message, err := client.PollForMessage(ctx, identity, cfg.Mail.SubjectMatch, timeout)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					return cli.Transient("waiting for verification mail: %w", err)
				}
				if message != nil {
					if link, ok := mailbox.ExtractActionLink(message, linkPattern); ok {
						result.VerifyLink = link
						visit := driver.Visit(ctx, link)
						result.Visited = visit.OK()
						if !visit.OK() {
							logger.Warn("opening the verification link failed", "error", failureText(visit))
						}
					} else {
						logger.Warn("verification mail has no link matching mail.link_pattern", "subject", message.Subject)
					}
				}
			}
			result.Status = identity.Status

			if done, err := params.EmitJSON(out, result); done {
				return err
			}
			return printResult(out, result, params.Register)
		},
	}
}

func printResult(out io.Writer, result createResult, registered bool) error {
	var body strings.Builder
	fmt.Fprintf(&body, "Address:      %s\n", result.Address)
	fmt.Fprintf(&body, "Verification: %s\n", result.Status)
	if registered {
		if result.Registered {
			body.WriteString("Registration: completed\n")
		} else {
			fmt.Fprintf(&body, "Registration: incomplete (%s)\n", result.RegistrationError)
		}
		if result.VerifyLink != "" {
			fmt.Fprintf(&body, "Verify link:  %s\n", result.VerifyLink)
		}
	}
	if err := cli.PrintPanel(out, "Disposable identity", body.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\nexport %s=%s\nexport %s=%s\n",
		credential.PrincipalEnv, result.Address,
		credential.SecretEnv, result.Password)
	return err
}

func failureText(result session.Result) string {
	if err := result.Error(); err != nil {
		return err.Error()
	}
	return "ended in state " + string(result.State)
}
