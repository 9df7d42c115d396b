package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"haku/internal/models"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes JSON output.
type JSONFormatter struct{}

// Write writes JSON payload to a writer.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(payload)
}

// State markers for plain-text listings. The color library disables
// itself on non-TTY output.
var (
	openMarker    = color.New(color.FgGreen)
	closedMarker  = color.New(color.FgRed)
	pendingMarker = color.New(color.FgYellow)
	dryRunColor   = color.New(color.FgYellow)
)

// Marker returns the colored state indicator for an issue.
func Marker(issue models.Issue) string {
	switch {
	case issue.Pending():
		return pendingMarker.Sprint("◌")
	case issue.State == models.StateClosed:
		return closedMarker.Sprint("●")
	default:
		return openMarker.Sprint("○")
	}
}

// IssueLine renders one issue for list output.
func IssueLine(issue models.Issue) string {
	number := fmt.Sprintf("#%d", issue.Number)
	if issue.Pending() {
		number = "#-"
	}
	line := fmt.Sprintf("%s %s %s", Marker(issue), number, issue.Title)
	if len(issue.Labels) > 0 {
		line += fmt.Sprintf(" [%s]", strings.Join(issue.Labels, ", "))
	}
	return line
}

// IssueDetail renders one issue with all metadata and the body.
func IssueDetail(issue models.Issue) string {
	lines := []string{
		fmt.Sprintf("%s %s", Marker(issue), issue.Title),
		fmt.Sprintf("number: %s", numberLabel(issue)),
		fmt.Sprintf("state: %s", issue.State),
	}
	if len(issue.Labels) > 0 {
		lines = append(lines, fmt.Sprintf("labels: %s", strings.Join(issue.Labels, ", ")))
	}
	if issue.Milestone != "" {
		lines = append(lines, fmt.Sprintf("milestone: %s", issue.Milestone))
	}
	if !issue.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("created_at: %s", formatTime(issue.CreatedAt)))
	}
	if !issue.UpdatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("updated_at: %s", formatTime(issue.UpdatedAt)))
	}
	if body := strings.TrimSpace(issue.Body); body != "" {
		lines = append(lines, "", body)
	}
	return strings.Join(lines, "\n")
}

// DryRunLine tags an intended action that was not executed.
func DryRunLine(action string) string {
	return fmt.Sprintf("%s %s", dryRunColor.Sprint("[dry-run]"), action)
}

func numberLabel(issue models.Issue) string {
	if issue.Pending() {
		return "pending"
	}
	return fmt.Sprintf("#%d", issue.Number)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
