package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"haku/internal/config"
	"haku/internal/sync"
)

func newPushCmd(cfg *config.Config, configPath string, jsonOutput *bool) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "push [number]",
		Short: "Push local issues to the tracker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sync.PushOptions{DryRun: dryRun}
			if len(args) == 1 {
				number, err := parseIssueNumber(args[0])
				if err != nil {
					return err
				}
				opts.Number = number
			}

			report, err := newEngine(cfg).Push(cmd.Context(), opts)

			// The engine may have promoted issues and dequeued closures
			// before a batch-fatal error; persist that progress.
			if !dryRun && report.Backup != "" {
				if saveErr := cfg.Save(configPath); saveErr != nil && err == nil {
					err = saveErr
				}
			}

			if writeErr := writeOutcome(report, *jsonOutput); writeErr != nil && err == nil {
				err = writeErr
			}
			if err != nil {
				return err
			}
			if report.Failed() {
				return fmt.Errorf("push finished with %d failures", len(report.Failures))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print intended actions without any network or filesystem effects")
	return cmd
}

func writeOutcome(report sync.Report, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(report)
	}
	return writeReport(report)
}
