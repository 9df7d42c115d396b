package main

import (
	"github.com/spf13/cobra"

	"haku/internal/config"
	"haku/internal/sync"
)

func newPullCmd(cfg *config.Config, configPath string, jsonOutput *bool) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Mirror remote issues into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := newEngine(cfg).Pull(cmd.Context(), sync.PullOptions{Force: force})
			if err != nil {
				return err
			}
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			return writeOutcome(report, *jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite local state even when pending issues exist")
	return cmd
}
