package main

import (
	"github.com/spf13/cobra"

	"haku/internal/config"
)

func newBackupCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the issues directory, or list existing snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := backupManager(cfg)

			if list {
				snapshots, err := manager.List()
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(snapshots)
				}
				for _, snapshot := range snapshots {
					if err := writePlain("%s (%d files)\n", snapshot.Name, snapshot.Files); err != nil {
						return err
					}
				}
				return nil
			}

			path, err := manager.Snapshot(issueStore(cfg).Dir())
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(struct {
					Path string `json:"path"`
				}{Path: path})
			}
			return writePlain("%s\n", path)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list existing snapshots")
	return cmd
}
