package models

import (
	"fmt"
	"strings"
	"time"
)

// IssueState defines allowed lifecycle states for issues.
type IssueState string

const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

// PendingNumber marks an issue that exists locally but has not been
// created on the tracker yet. Pushing assigns the real number.
const PendingNumber = 0

var validIssueStates = map[IssueState]struct{}{
	StateOpen:   {},
	StateClosed: {},
}

// Issue represents a single tracked issue, locally or remotely.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     IssueState `json:"state"`
	Body      string     `json:"body,omitempty"`
	Labels    []string   `json:"labels,omitempty"`
	Milestone string     `json:"milestone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Pending reports whether the issue is local-only and awaits creation
// on the tracker.
func (i Issue) Pending() bool {
	return i.Number == PendingNumber
}

func (i Issue) Validate() error {
	if i.Number < 0 {
		return fmt.Errorf("invalid issue number: %d", i.Number)
	}
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !IsValidIssueState(i.State) {
		return fmt.Errorf("invalid state: %s", i.State)
	}
	return nil
}

func IsValidIssueState(state IssueState) bool {
	_, ok := validIssueStates[state]
	return ok
}

func ParseIssueState(raw string) (IssueState, error) {
	value := IssueState(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("state is required")
	}
	if !IsValidIssueState(value) {
		return "", fmt.Errorf("invalid state: %s", value)
	}
	return value, nil
}

func IssueStateStrings() []string {
	return []string{string(StateOpen), string(StateClosed)}
}
