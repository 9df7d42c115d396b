package main

import (
	"github.com/spf13/cobra"

	"haku/internal/config"
)

func newDeleteCmd(cfg *config.Config, configPath string, jsonOutput *bool) *cobra.Command {
	var localOnly bool

	cmd := &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete a local issue and queue its remote closure",
		Args:  requireIssueNumber,
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}

			st := issueStore(cfg)
			if _, err := backupManager(cfg).Snapshot(st.Dir()); err != nil {
				return err
			}

			entry, err := st.Remove(number)
			if err != nil {
				return err
			}

			queued := false
			if !localOnly && !entry.Issue.Pending() {
				queued = cfg.QueuePendingClosure(entry.Issue.Number)
				if queued {
					if err := cfg.Save(configPath); err != nil {
						return err
					}
				}
			}

			if *jsonOutput {
				return writeJSON(struct {
					Deleted string `json:"deleted"`
					Queued  bool   `json:"closure_queued"`
				}{Deleted: entry.Filename, Queued: queued})
			}
			if queued {
				return writePlain("deleted %s; remote closure queued for next push\n", entry.Filename)
			}
			return writePlain("deleted %s\n", entry.Filename)
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local-only", false, "do not queue a remote closure")
	return cmd
}
