package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/pkg/config"
	"github.com/rotmg-stash/stash-helper/pkg/logger"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	cfg       *config.Config
	baseURL   string
	dataDir   string
	extractor string
	logLevel  string
}

// NewRootCmd creates the root command for the stash helper CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "stash-helper",
		Short: "RotMG account helper: account dumps, settings and game launch",
		Long: `stash-helper signs in to the Realm of the Mad God web service to fetch
account data, manages the local settings file and launches the Exalt client.
Run "serve" to expose the same commands to a local UI over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "game web service base URL (env REALM_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "settings directory (env STASH_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.extractor, "extractor", extractorRegex, "tag extractor: regex or scan")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (env LOG_LEVEL)")

	cmd.AddCommand(newDumpCmd(opts))
	cmd.AddCommand(newSettingsCmd(opts))
	cmd.AddCommand(newLaunchCmd(opts))
	cmd.AddCommand(newDeviceTokenCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newAccountsCmd(opts))

	return cmd
}

// load reads the environment, applies flag overrides and starts the logger.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg := config.Load()
	if o.baseURL != "" {
		cfg.RealmBaseURL = o.baseURL
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.extractor != extractorRegex && o.extractor != extractorScan {
		return fmt.Errorf("unknown extractor %q", o.extractor)
	}
	o.cfg = cfg

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	logger.L().Debug("config.loaded",
		zap.String("command", cmd.Name()),
		zap.String("realm", cfg.RealmBaseURL),
		zap.String("env", cfg.Env))
	return nil
}
