// Package github is the gateway to a GitHub-style issue tracker API.
// It owns the wire protocol: authentication headers, pagination,
// rate-limit detection, and the mapping from HTTP statuses to the
// RemoteError taxonomy. It never retries; retry policy belongs to the
// caller.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"haku/internal/models"
)

const (
	// DefaultBaseURL is the public tracker endpoint; tests and
	// self-hosted setups override it through configuration.
	DefaultBaseURL = "https://api.github.com"

	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "HAKU_HTTP_TIMEOUT"

	acceptHeader = "application/vnd.github+json"
	perPage      = 100
)

// Gateway is the remote surface the sync engine drives. Get reports a
// missing issue as a RemoteError with KindNotFound. List follows
// pagination until the result set is exhausted.
type Gateway interface {
	Get(ctx context.Context, number int) (RemoteIssue, error)
	Create(ctx context.Context, issue models.Issue) (RemoteIssue, error)
	Update(ctx context.Context, number int, issue models.Issue) (RemoteIssue, error)
	Close(ctx context.Context, number int) (RemoteIssue, error)
	List(ctx context.Context, filter ListFilter) ([]RemoteIssue, error)
}

// ListFilter narrows List results. State is the tracker-side state
// filter (open, closed, or empty for all); Query is matched locally as
// a case-insensitive substring over title and body.
type ListFilter struct {
	State string
	Query string
}

// Client is the HTTP implementation of Gateway for one repository.
type Client struct {
	baseURL string
	repo    string
	token   string
	http    *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a client for the repository given as "owner/name".
func NewClient(baseURL, repo, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		repo:    strings.Trim(repo, "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Get fetches a single issue by number.
func (c *Client) Get(ctx context.Context, number int) (RemoteIssue, error) {
	var issue RemoteIssue
	if err := c.do(ctx, http.MethodGet, c.issuePath(number), nil, nil, &issue); err != nil {
		return RemoteIssue{}, err
	}
	return issue, validated(issue)
}

// Create opens a new issue and returns the tracker's record, including
// the assigned number.
func (c *Client) Create(ctx context.Context, issue models.Issue) (RemoteIssue, error) {
	var created RemoteIssue
	if err := c.do(ctx, http.MethodPost, c.issuesPath(), nil, requestFor(issue, false), &created); err != nil {
		return RemoteIssue{}, err
	}
	return created, validated(created)
}

// Update rewrites title, body, state, labels, and milestone of an
// existing issue.
func (c *Client) Update(ctx context.Context, number int, issue models.Issue) (RemoteIssue, error) {
	var updated RemoteIssue
	if err := c.do(ctx, http.MethodPatch, c.issuePath(number), nil, requestFor(issue, true), &updated); err != nil {
		return RemoteIssue{}, err
	}
	return updated, validated(updated)
}

// Close marks a remote issue closed. The tracker never hard-deletes,
// so this is the remote half of a local delete.
func (c *Client) Close(ctx context.Context, number int) (RemoteIssue, error) {
	var closed RemoteIssue
	payload := struct {
		State string `json:"state"`
	}{State: "closed"}
	if err := c.do(ctx, http.MethodPatch, c.issuePath(number), nil, payload, &closed); err != nil {
		return RemoteIssue{}, err
	}
	return closed, validated(closed)
}

// List fetches every issue matching the filter, following pagination
// until the tracker reports no further pages. Pull requests, which the
// tracker lists alongside issues, are dropped.
func (c *Client) List(ctx context.Context, filter ListFilter) ([]RemoteIssue, error) {
	state := filter.State
	if state == "" {
		state = "all"
	}

	var all []RemoteIssue
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("state", state)
		query.Set("per_page", strconv.Itoa(perPage))
		query.Set("page", strconv.Itoa(page))

		resp, err := c.send(ctx, http.MethodGet, c.issuesPath(), query, nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			err := decodeError(resp)
			resp.Body.Close()
			return nil, err
		}

		var batch []RemoteIssue
		err = json.NewDecoder(resp.Body).Decode(&batch)
		link := resp.Header.Get("Link")
		resp.Body.Close()
		if err != nil {
			return nil, &RemoteError{Kind: KindTransportFailure, Message: fmt.Sprintf("decoding page %d: %v", page, err)}
		}

		for _, issue := range batch {
			if issue.IsPullRequest() {
				continue
			}
			if err := validated(issue); err != nil {
				return nil, err
			}
			if !matchesQuery(issue, filter.Query) {
				continue
			}
			all = append(all, issue)
		}

		// The Link header is authoritative when present. Without it,
		// keep requesting pages until one comes back empty.
		switch {
		case strings.Contains(link, `rel="next"`):
		case link == "" && len(batch) > 0:
		default:
			return all, nil
		}
	}
}

func (c *Client) issuesPath() string {
	return "/repos/" + c.repo + "/issues"
}

func (c *Client) issuePath(number int) string {
	return fmt.Sprintf("%s/%d", c.issuesPath(), number)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Kind: KindTransportFailure, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteError{Kind: KindTransportFailure, Message: err.Error()}
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	message := body.Message

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &RemoteError{Kind: KindAuthFailed, Status: resp.StatusCode, Message: message}
	case http.StatusForbidden:
		if remaining, ok := parseHeaderInt(resp.Header, "x-ratelimit-remaining"); ok && remaining == 0 {
			return rateLimitError(resp, message)
		}
		return &RemoteError{Kind: KindAuthFailed, Status: resp.StatusCode, Message: message}
	case http.StatusTooManyRequests:
		return rateLimitError(resp, message)
	case http.StatusNotFound:
		return &RemoteError{Kind: KindNotFound, Status: resp.StatusCode, Message: message}
	case http.StatusUnprocessableEntity:
		return &RemoteError{Kind: KindValidationFailed, Status: resp.StatusCode, Message: message}
	default:
		if message == "" {
			message = resp.Status
		}
		return &RemoteError{Kind: KindTransportFailure, Status: resp.StatusCode, Message: message}
	}
}

func rateLimitError(resp *http.Response, message string) error {
	err := &RemoteError{Kind: KindRateLimited, Status: resp.StatusCode, Message: message}
	if reset := resp.Header.Get("x-ratelimit-reset"); reset != "" {
		if unix, parseErr := strconv.ParseInt(reset, 10, 64); parseErr == nil {
			err.ResetAt = time.Unix(unix, 0)
		}
	}
	if err.ResetAt.IsZero() {
		if seconds, ok := parseHeaderInt(resp.Header, "Retry-After"); ok {
			err.ResetAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}
	return err
}

func parseHeaderInt(headers http.Header, key string) (int, bool) {
	if value := headers.Get(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func validated(issue RemoteIssue) error {
	if err := issue.Validate(); err != nil {
		return &RemoteError{Kind: KindValidationFailed, Message: err.Error()}
	}
	return nil
}

func matchesQuery(issue RemoteIssue, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(issue.Title), query) ||
		strings.Contains(strings.ToLower(issue.Body), query)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
