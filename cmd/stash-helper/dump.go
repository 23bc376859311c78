package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotmg-stash/stash-helper/internal/commands"
	"github.com/rotmg-stash/stash-helper/pkg/logger"
)

func addCredentialFlags(cmd *cobra.Command, f *credentialFlags) {
	cmd.Flags().StringVar(&f.guid, "guid", "", "account e-mail or steamworks:<id> (env REALM_GUID)")
	cmd.Flags().StringVar(&f.password, "password", "", "account password or Steam secret (env REALM_PASSWORD)")
	cmd.Flags().StringVar(&f.secret, "secret", "", "read credentials from the AWS secret {env}/rotmg/<account>")
}

// newDumpCmd creates the dump subcommand.
func newDumpCmd(opts *rootOptions) *cobra.Command {
	creds := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the account data document",
		Long: `Sign in and print the raw character list (muleDump) document
returned by the game web service.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDump(cmd, opts, creds)
		},
	}
	addCredentialFlags(cmd, creds)
	return cmd
}

func runDump(cmd *cobra.Command, opts *rootOptions, f *credentialFlags) error {
	ctx := cmd.Context()
	d, err := buildDeps(opts.cfg, logger.L(), opts.extractor)
	if err != nil {
		return err
	}
	defer d.Close()

	creds, err := f.resolve(ctx, opts.cfg, d.logger)
	if err != nil {
		return err
	}

	body, err := d.service.FetchAccountDump(ctx, creds.GUID, creds.Secret)
	if err != nil {
		cmd.PrintErrln(commands.UserMessage(err))
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), body)
	return nil
}
