package github

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"haku/internal/models"
)

// RemoteIssue mirrors the tracker's issue representation. It is
// read-only from the sync engine's point of view.
type RemoteIssue struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	State       string     `json:"state"`
	Labels      []Label    `json:"labels"`
	Milestone   *Milestone `json:"milestone"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

// Label is the tracker's label object; only the name matters locally.
type Label struct {
	Name string `json:"name"`
}

// Milestone is the tracker's milestone object.
type Milestone struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// IsPullRequest reports whether this entry is a pull request. The
// tracker lists pull requests alongside issues; the sync skips them.
func (r RemoteIssue) IsPullRequest() bool {
	return r.PullRequest != nil
}

// Validate checks the fields the sync relies on. Responses failing
// this check are surfaced as validation errors instead of leaking
// half-empty records into the local store.
func (r RemoteIssue) Validate() error {
	if r.Number <= 0 {
		return fmt.Errorf("missing issue number")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("issue #%d: missing title", r.Number)
	}
	if _, err := models.ParseIssueState(r.State); err != nil {
		return fmt.Errorf("issue #%d: %v", r.Number, err)
	}
	return nil
}

// Issue translates the tracker representation into the local record
// model. Call Validate first; an unknown state falls back to open.
func (r RemoteIssue) Issue() models.Issue {
	state, err := models.ParseIssueState(r.State)
	if err != nil {
		state = models.StateOpen
	}

	var labels []string
	for _, label := range r.Labels {
		if label.Name != "" {
			labels = append(labels, label.Name)
		}
	}

	milestone := ""
	if r.Milestone != nil {
		milestone = r.Milestone.Title
	}

	return models.Issue{
		Number:    r.Number,
		Title:     r.Title,
		State:     state,
		Body:      r.Body,
		Labels:    labels,
		Milestone: milestone,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// issueRequest is the create/update payload. Milestone is sent as a
// number when the local value parses as one, otherwise as the raw
// string and the tracker decides whether to accept it.
type issueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	State     string   `json:"state,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Milestone any      `json:"milestone,omitempty"`
}

func requestFor(issue models.Issue, includeState bool) issueRequest {
	req := issueRequest{
		Title:  issue.Title,
		Body:   issue.Body,
		Labels: issue.Labels,
	}
	if includeState {
		req.State = string(issue.State)
	}
	if issue.Milestone != "" {
		if number, err := strconv.Atoi(issue.Milestone); err == nil {
			req.Milestone = number
		} else {
			req.Milestone = issue.Milestone
		}
	}
	return req
}

// errorResponse is the tracker's JSON error wrapper.
type errorResponse struct {
	Message string `json:"message"`
}
