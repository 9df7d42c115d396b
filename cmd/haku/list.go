package main

import (
	"errors"

	"github.com/spf13/cobra"

	"haku/internal/config"
	"haku/internal/github"
	"haku/internal/models"
	"haku/internal/store"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		remote     bool
		openOnly   bool
		closedOnly bool
		query      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues, local by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := stateFilter(openOnly, closedOnly)
			if err != nil {
				return err
			}

			var issues []models.Issue
			if remote {
				if err := cfg.RequireRemote(); err != nil {
					return err
				}
				fetched, err := remoteGateway(cfg).List(cmd.Context(), github.ListFilter{State: string(state), Query: query})
				if err != nil {
					return err
				}
				for _, remoteIssue := range fetched {
					issues = append(issues, remoteIssue.Issue())
				}
			} else {
				issues, err = issueStore(cfg).List(store.Filter{State: state, Query: query})
				if err != nil {
					return err
				}
			}

			if *jsonOutput {
				return writeJSON(issues)
			}
			return writeIssueList(issues)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "list remote issues instead of local files")
	cmd.Flags().BoolVar(&openOnly, "open", false, "only open issues")
	cmd.Flags().BoolVar(&closedOnly, "closed", false, "only closed issues")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive substring filter over title and body")
	return cmd
}

func stateFilter(openOnly, closedOnly bool) (models.IssueState, error) {
	switch {
	case openOnly && closedOnly:
		return "", errors.New("--open and --closed are mutually exclusive")
	case openOnly:
		return models.StateOpen, nil
	case closedOnly:
		return models.StateClosed, nil
	default:
		return "", nil
	}
}
