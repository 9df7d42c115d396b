package main

import (
	"fmt"
	"os"
	"strings"

	"haku/internal/format"
	"haku/internal/models"
	"haku/internal/sync"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeIssueList(issues []models.Issue) error {
	for _, issue := range issues {
		if err := writePlain("%s\n", format.IssueLine(issue)); err != nil {
			return err
		}
	}
	return nil
}

func writeIssueDetail(issue models.Issue) error {
	return writePlain("%s\n", format.IssueDetail(issue))
}

func writeReport(report sync.Report) error {
	for _, action := range report.Actions {
		if err := writePlain("%s\n", format.DryRunLine(action)); err != nil {
			return err
		}
	}
	if len(report.Actions) > 0 {
		return writePlain("%d actions planned, none executed\n", len(report.Actions))
	}

	var parts []string
	if report.Created > 0 {
		parts = append(parts, fmt.Sprintf("%d created", report.Created))
	}
	if report.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", report.Updated))
	}
	if report.Closed > 0 {
		parts = append(parts, fmt.Sprintf("%d closed", report.Closed))
	}
	if report.Pulled > 0 {
		parts = append(parts, fmt.Sprintf("%d pulled", report.Pulled))
	}
	if len(report.Failures) > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", len(report.Failures)))
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}
	if err := writePlain("%s\n", strings.Join(parts, ", ")); err != nil {
		return err
	}

	for _, failure := range report.Failures {
		label := failure.Title
		if failure.Number > 0 {
			label = fmt.Sprintf("#%d %s", failure.Number, failure.Title)
		}
		if err := writePlain("failed: %s: %s\n", strings.TrimSpace(label), failure.Reason); err != nil {
			return err
		}
	}
	if report.Aborted != "" {
		if err := writePlain("aborted: %s\n", report.Aborted); err != nil {
			return err
		}
	}
	return nil
}
