package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"haku/internal/config"
	"haku/internal/models"
	"haku/internal/store"
)

type statusReport struct {
	Remote          string `json:"remote,omitempty"`
	Token           string `json:"token"`
	IssuesDir       string `json:"issues_dir"`
	Open            int    `json:"open"`
	Closed          int    `json:"closed"`
	Pending         int    `json:"pending"`
	NextNumber      int    `json:"next_number"`
	PendingClosures []int  `json:"pending_closures,omitempty"`
	LastSync        string `json:"last_sync,omitempty"`
}

func newStatusCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show link, token, and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := issueStore(cfg).Entries()
			if err != nil {
				return err
			}

			report := statusReport{
				Remote:          cfg.Remote,
				Token:           maskToken(cfg.Token),
				IssuesDir:       cfg.IssuesDir,
				PendingClosures: cfg.PendingClosures,
				NextNumber:      store.NextNumber(confirmedNumbers(entries)),
			}
			for _, entry := range entries {
				switch {
				case entry.Issue.Pending():
					report.Pending++
				case entry.Issue.State == models.StateClosed:
					report.Closed++
				default:
					report.Open++
				}
			}
			if when, ok := cfg.LastSyncTime(); ok {
				report.LastSync = when.Format("2006-01-02 15:04:05 MST")
			}

			if *jsonOutput {
				return writeJSON(report)
			}

			lines := []string{
				fmt.Sprintf("remote: %s", valueOrUnset(report.Remote)),
				fmt.Sprintf("token: %s", report.Token),
				fmt.Sprintf("issues_dir: %s", report.IssuesDir),
				fmt.Sprintf("issues: %d open, %d closed, %d pending", report.Open, report.Closed, report.Pending),
				fmt.Sprintf("next number: %d", report.NextNumber),
			}
			if len(report.PendingClosures) > 0 {
				lines = append(lines, fmt.Sprintf("queued closures: %s", joinNumbers(report.PendingClosures)))
			}
			if report.LastSync != "" {
				lines = append(lines, fmt.Sprintf("last sync: %s", report.LastSync))
			}
			return writePlain("%s\n", strings.Join(lines, "\n"))
		},
	}
}

func confirmedNumbers(entries []store.Entry) []int {
	numbers := make([]int, 0, len(entries))
	for _, entry := range entries {
		if !entry.Issue.Pending() {
			numbers = append(numbers, entry.Issue.Number)
		}
	}
	return numbers
}

func valueOrUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func joinNumbers(numbers []int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, fmt.Sprintf("#%d", n))
	}
	return strings.Join(parts, ", ")
}
