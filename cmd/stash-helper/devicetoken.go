package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotmg-stash/stash-helper/internal/commands"
	"github.com/rotmg-stash/stash-helper/internal/deviceid"
	"github.com/rotmg-stash/stash-helper/pkg/logger"
)

// deviceTokenConfig holds flags for the device-token command.
type deviceTokenConfig struct {
	printScript bool
	viaScript   bool
}

// newDeviceTokenCmd creates the device-token subcommand.
func newDeviceTokenCmd(opts *rootOptions) *cobra.Command {
	cfg := &deviceTokenConfig{}

	cmd := &cobra.Command{
		Use:   "device-token",
		Short: "Print this machine's device token",
		Long: `Derive the device token from the machine's hardware serial numbers.
With --script, print the PowerShell helper instead so it can be run by hand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.printScript {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), deviceid.PowerShellScript)
				return nil
			}

			var src commands.DeviceTokenSource = deviceid.NewProvider(logger.L())
			if cfg.viaScript {
				src = deviceid.ScriptRunner{Runner: deviceid.ExecRunner{}}
			}
			svc := commands.NewService(logger.L(), nil, nil, nil, src)

			tok, err := svc.DeviceToken(cmd.Context())
			if err != nil {
				cmd.PrintErrln(commands.UserMessage(err))
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cfg.printScript, "script", false, "print the PowerShell helper script")
	cmd.Flags().BoolVar(&cfg.viaScript, "run-script", false, "derive the token by running the PowerShell helper")
	return cmd
}
