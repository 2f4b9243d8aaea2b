/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const listUsersProgram = "list-users"

func printUsage(w io.Writer, reason string) {
	fmt.Fprintln(w, reason)
	fmt.Fprintln(w, "List of commands:")
	fmt.Fprintln(w, " demo list-users")
	fmt.Fprintln(w, " mailboxes <server> <domain>")
}

func unrecognized(cmd *cobra.Command, args []string) {
	printUsage(cmd.OutOrStdout(), "Unrecognized command: "+strings.TrimSpace(cmd.Name()+" "+strings.Join(args, " ")))
}

// flagUsage is inherited by every subcommand, so a bad flag anywhere is
// reported like any other unrecognized input.
func flagUsage(cmd *cobra.Command, err error) error {
	reason := "Unrecognized command: " + err.Error()
	if cmd.HasParent() {
		reason = "Unrecognized command: " + cmd.Name() + ": " + err.Error()
	}
	printUsage(cmd.OutOrStdout(), reason)

	return nil
}

func report(cfg *Config, w io.Writer, body string) error {
	resp, err := parseMailboxList(body)
	if err != nil {
		return err
	}

	if resp.Command != "" {
		logf(cfg, "REPORT: %d mailboxes from %s", len(resp.Data), resp.Command)
	}

	return printReport(w, resp)
}

func newDemoCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "demo <subcommand>",
		Short: "Format an embedded sample response without contacting a server.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			if len(args) != 1 {
				unrecognized(cmd, args)
				return nil
			}

			sample, ok := demos[args[0]]
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Unrecognized demo command: %s\n", args[0])
				return nil
			}

			return report(cfg, cmd.OutOrStdout(), sample)
		},
	}
}

func newMailboxesCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "mailboxes <server> <domain>",
		Short: "Fetch and report mailbox disk usage for a domain.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			if len(args) != 2 {
				unrecognized(cmd, args)
				return nil
			}
			server, domain := args[0], args[1]

			creds, err := loadCredentials(v)
			if err != nil {
				return err
			}

			body, err := newClient(cfg, creds).fetchMailboxList(cmd.Context(), server, domain, listUsersProgram)
			if err != nil {
				return err
			}

			return report(cfg, cmd.OutOrStdout(), body)
		},
	}
}
