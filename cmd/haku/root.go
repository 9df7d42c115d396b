package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"haku/internal/config"
)

func newRootCmd(cfg *config.Config, configPath string) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "haku",
		Short: "Haku manages issues as markdown files and syncs them with a remote tracker",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newInitCmd(cfg, configPath),
		newLinkCmd(cfg, configPath),
		newTokenCmd(cfg, configPath),
		newCreateCmd(cfg, &jsonOutput),
		newListCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newDeleteCmd(cfg, configPath, &jsonOutput),
		newPushCmd(cfg, configPath, &jsonOutput),
		newPullCmd(cfg, configPath, &jsonOutput),
		newStatusCmd(cfg, &jsonOutput),
		newBackupCmd(cfg, &jsonOutput),
		newConfigCmd(cfg, configPath),
	)

	return cmd
}
