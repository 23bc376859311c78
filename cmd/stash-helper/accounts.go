package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotmg-stash/stash-helper/pkg/logger"
)

// newAccountsCmd creates the accounts subcommand.
func newAccountsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with credentials in AWS Secrets Manager",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolver, err := newCredentialResolver(cmd.Context(), opts.cfg, logger.L())
			if err != nil {
				return err
			}
			accounts, err := resolver.DiscoverAccounts(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range accounts {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
}
