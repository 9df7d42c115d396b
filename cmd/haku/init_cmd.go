package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"haku/internal/config"
)

func newInitCmd(cfg *config.Config, configPath string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the issues directory and a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := issueStore(cfg)

			if _, err := os.Stat(configPath); err == nil && st.Initialized() {
				return fmt.Errorf("already initialized: %s and %s exist", configPath, st.Dir())
			} else if err != nil && !os.IsNotExist(err) {
				return err
			}

			if err := st.Init(); err != nil {
				return err
			}
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := cfg.Save(configPath); err != nil {
					return err
				}
			}
			return writePlain("initialized: issues in %s, config in %s\n", st.Dir(), configPath)
		},
	}
}
