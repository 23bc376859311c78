package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotmg-stash/stash-helper/internal/commands"
	"github.com/rotmg-stash/stash-helper/pkg/logger"
)

// launchConfig holds flags for the launch command.
type launchConfig struct {
	creds       credentialFlags
	exaltDir    string
	deviceToken string
}

// newLaunchCmd creates the launch subcommand.
func newLaunchCmd(opts *rootOptions) *cobra.Command {
	cfg := &launchConfig{}

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Sign in and start the Exalt client",
		Long: `Sign in with the given device token and start "RotMG Exalt.exe" from the
Exalt directory with the session passed as its launch argument.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLaunch(cmd, opts, cfg)
		},
	}
	addCredentialFlags(cmd, &cfg.creds)
	cmd.Flags().StringVar(&cfg.exaltDir, "exalt-dir", "", "directory containing RotMG Exalt.exe (env EXALT_DIR)")
	cmd.Flags().StringVar(&cfg.deviceToken, "device-token", "", "device token (env DEVICE_TOKEN)")
	return cmd
}

func runLaunch(cmd *cobra.Command, opts *rootOptions, cfg *launchConfig) error {
	ctx := cmd.Context()
	exaltDir := cfg.exaltDir
	if exaltDir == "" {
		exaltDir = opts.cfg.ExaltDir
	}
	if exaltDir == "" {
		return fmt.Errorf("exalt directory is required (--exalt-dir or EXALT_DIR)")
	}
	deviceToken := cfg.deviceToken
	if deviceToken == "" {
		deviceToken = opts.cfg.DeviceToken
	}

	d, err := buildDeps(opts.cfg, logger.L(), opts.extractor)
	if err != nil {
		return err
	}
	defer d.Close()

	creds, err := cfg.creds.resolve(ctx, opts.cfg, d.logger)
	if err != nil {
		return err
	}

	res, err := d.service.Launch(ctx, exaltDir, deviceToken, creds.GUID, creds.Secret)
	if err != nil {
		cmd.PrintErrln(commands.UserMessage(err))
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), res)
	return nil
}
