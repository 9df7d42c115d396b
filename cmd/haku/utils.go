package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// parseIssueNumber accepts "12" and "#12". Zero addresses the first
// pending record, so negatives are the only rejected values.
func parseIssueNumber(raw string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	number, err := strconv.Atoi(trimmed)
	if err != nil || number < 0 {
		return 0, fmt.Errorf("invalid issue number %q", raw)
	}
	return number, nil
}

func requireIssueNumber(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one issue number")
	}
	_, err := parseIssueNumber(args[0])
	return err
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
