package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"haku/internal/config"
	"haku/internal/models"
)

type createCmdOptions struct {
	body      string
	labels    []string
	milestone string
}

func newCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &createCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a local issue, pending until the next push",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}

			issue := models.Issue{
				Title:     strings.Join(args, " "),
				State:     models.StateOpen,
				Body:      opts.body,
				Labels:    opts.labels,
				Milestone: opts.milestone,
			}

			entry, err := issueStore(cfg).Create(issue)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(entry)
			}
			return writePlain("%s\n", entry.Filename)
		},
	}

	cmd.Flags().StringVarP(&opts.body, "body", "b", "", "issue body")
	cmd.Flags().StringSliceVarP(&opts.labels, "label", "l", nil, "labels (repeatable)")
	cmd.Flags().StringVarP(&opts.milestone, "milestone", "m", "", "milestone name or number")
	return cmd
}
