package main

import (
	"github.com/spf13/cobra"

	"haku/internal/config"
)

func newLinkCmd(cfg *config.Config, configPath string) *cobra.Command {
	return &cobra.Command{
		Use:   "link <owner/repo | url>",
		Short: "Link a remote repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, err := config.NormalizeRemote(args[0])
			if err != nil {
				return err
			}
			cfg.Remote = remote
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			return writePlain("linked to %s\n", remote)
		},
	}
}
