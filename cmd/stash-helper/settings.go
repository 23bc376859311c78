package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotmg-stash/stash-helper/internal/commands"
	"github.com/rotmg-stash/stash-helper/pkg/logger"
)

// newSettingsCmd creates the settings subcommand.
func newSettingsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the local settings, creating them on first run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps(opts.cfg, logger.L(), opts.extractor)
			if err != nil {
				return err
			}
			defer d.Close()

			st, err := d.service.GetOrCreateSettings(cmd.Context())
			if err != nil {
				cmd.PrintErrln(commands.UserMessage(err))
				return err
			}
			out, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format JSON: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
