// Package record defines the on-disk format for issue files: YAML
// front matter carrying the metadata, followed by the free-form
// markdown body. The filename encodes the issue number and a slug of
// the title (see locator.go).
package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"haku/internal/models"
)

// ErrMalformed marks issue files that cannot be decoded. Batch
// operations skip such files instead of aborting.
var ErrMalformed = errors.New("malformed issue file")

const frontMatterDelim = "---"

type frontMatter struct {
	Number    int    `yaml:"number"`
	Title     string `yaml:"title"`
	State     string `yaml:"state"`
	Labels    string `yaml:"labels,omitempty"`
	Milestone string `yaml:"milestone,omitempty"`
	CreatedAt string `yaml:"created_at,omitempty"`
	UpdatedAt string `yaml:"updated_at,omitempty"`
}

// Encode renders an issue as a markdown document with YAML front
// matter. The body is stored with surrounding whitespace trimmed so
// that Encode and Decode round-trip.
func Encode(issue models.Issue) ([]byte, error) {
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	fm := frontMatter{
		Number:    issue.Number,
		Title:     issue.Title,
		State:     string(issue.State),
		Labels:    strings.Join(issue.Labels, ", "),
		Milestone: issue.Milestone,
	}
	if !issue.CreatedAt.IsZero() {
		fm.CreatedAt = issue.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !issue.UpdatedAt.IsZero() {
		fm.UpdatedAt = issue.UpdatedAt.UTC().Format(time.RFC3339)
	}

	meta, err := yaml.Marshal(fm)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(frontMatterDelim + "\n")
	b.Write(meta)
	b.WriteString(frontMatterDelim + "\n")
	if body := strings.TrimSpace(issue.Body); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// Decode parses a markdown document produced by Encode. Structural
// problems are reported as ErrMalformed so callers can skip the file.
func Decode(data []byte) (models.Issue, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontMatterDelim {
		return models.Issue{}, fmt.Errorf("%w: missing front matter", ErrMalformed)
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelim {
			end = i
			break
		}
	}
	if end == -1 {
		return models.Issue{}, fmt.Errorf("%w: front matter not closed", ErrMalformed)
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return models.Issue{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	issue := models.Issue{
		Number:    fm.Number,
		Title:     fm.Title,
		Body:      strings.TrimSpace(strings.Join(lines[end+1:], "\n")),
		Labels:    splitLabels(fm.Labels),
		Milestone: fm.Milestone,
	}

	state := fm.State
	if strings.TrimSpace(state) == "" {
		state = string(models.StateOpen)
	}
	parsed, err := models.ParseIssueState(state)
	if err != nil {
		return models.Issue{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	issue.State = parsed

	if issue.CreatedAt, err = parseTimestamp(fm.CreatedAt); err != nil {
		return models.Issue{}, fmt.Errorf("%w: created_at: %v", ErrMalformed, err)
	}
	if issue.UpdatedAt, err = parseTimestamp(fm.UpdatedAt); err != nil {
		return models.Issue{}, fmt.Errorf("%w: updated_at: %v", ErrMalformed, err)
	}

	if err := issue.Validate(); err != nil {
		return models.Issue{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return issue, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, strings.TrimSpace(raw))
}

func splitLabels(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
