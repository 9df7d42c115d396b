package main

import (
	"github.com/spf13/cobra"

	"haku/internal/config"
)

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "show <number>",
		Short: "Show one issue",
		Args:  requireIssueNumber,
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}

			if remote {
				if err := cfg.RequireRemote(); err != nil {
					return err
				}
				fetched, err := remoteGateway(cfg).Get(cmd.Context(), number)
				if err != nil {
					return err
				}
				issue := fetched.Issue()
				if *jsonOutput {
					return writeJSON(issue)
				}
				return writeIssueDetail(issue)
			}

			entry, err := issueStore(cfg).Get(number)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(entry.Issue)
			}
			return writeIssueDetail(entry.Issue)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch from the tracker instead of the local store")
	return cmd
}
