package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"haku/internal/config"
)

func newTokenCmd(cfg *config.Config, configPath string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <token>",
		Short: "Store the access token for the linked repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return errors.New("token must not be empty")
			}
			cfg.Token = token
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			return writePlain("token saved\n")
		},
	}
}
