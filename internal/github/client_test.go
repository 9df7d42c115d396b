package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"haku/internal/models"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestGetSendsAuthHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Accept"); got != acceptHeader {
			t.Errorf("unexpected accept header %q", got)
		}
		if r.URL.Path != "/repos/acme/widgets/issues/7" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		writeIssue(w, 7, "remote seven", "open")
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	issue, err := client.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if issue.Number != 7 || issue.Title != "remote seven" {
		t.Fatalf("unexpected issue %+v", issue)
	}
}

func TestCreateOmitsState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if _, ok := payload["state"]; ok {
			t.Error("create payload must not carry state")
		}
		if payload["title"] != "Bug A" {
			t.Errorf("unexpected title %v", payload["title"])
		}
		w.WriteHeader(http.StatusCreated)
		writeIssue(w, 42, "Bug A", "open")
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	created, err := client.Create(context.Background(), models.Issue{Title: "Bug A", State: models.StateOpen})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Number != 42 {
		t.Fatalf("expected assigned number 42, got %d", created.Number)
	}
}

func TestUpdateSendsState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["state"] != "closed" {
			t.Errorf("expected state closed, got %v", payload["state"])
		}
		writeIssue(w, 7, "done", "closed")
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	if _, err := client.Update(context.Background(), 7, models.Issue{Number: 7, Title: "done", State: models.StateClosed}); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestCloseSendsOnlyState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if len(payload) != 1 || payload["state"] != "closed" {
			t.Errorf("expected bare state payload, got %v", payload)
		}
		writeIssue(w, 3, "stale", "closed")
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	if _, err := client.Close(context.Background(), 3); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		headers  map[string]string
		wantKind ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, nil, KindAuthFailed},
		{"forbidden", http.StatusForbidden, nil, KindAuthFailed},
		{"rate limited via 403", http.StatusForbidden, map[string]string{"x-ratelimit-remaining": "0", "x-ratelimit-reset": "1700000000"}, KindRateLimited},
		{"rate limited via 429", http.StatusTooManyRequests, map[string]string{"Retry-After": "30"}, KindRateLimited},
		{"not found", http.StatusNotFound, nil, KindNotFound},
		{"validation", http.StatusUnprocessableEntity, nil, KindValidationFailed},
		{"server error", http.StatusInternalServerError, nil, KindTransportFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for key, value := range tc.headers {
					w.Header().Set(key, value)
				}
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"message":"nope"}`)
			}))
			defer server.Close()

			client := NewClient(server.URL, "acme/widgets", "secret")
			_, err := client.Get(context.Background(), 1)
			if !IsKind(err, tc.wantKind) {
				t.Fatalf("expected kind %s, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestRateLimitCarriesReset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ratelimit-remaining", "0")
		w.Header().Set("x-ratelimit-reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	_, err := client.Get(context.Background(), 1)

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.Kind != KindRateLimited {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if !remoteErr.ResetAt.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("expected reset time from header, got %v", remoteErr.ResetAt)
	}
}

func TestListFollowsLinkPagination(t *testing.T) {
	var pagesServed []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		switch page {
		case "1":
			w.Header().Set("Link", `<https://example.test/?page=2>; rel="next", <https://example.test/?page=2>; rel="last"`)
			fmt.Fprint(w, `[{"number":1,"title":"one","state":"open"}]`)
		case "2":
			w.Header().Set("Link", `<https://example.test/?page=1>; rel="prev"`)
			fmt.Fprint(w, `[{"number":2,"title":"two","state":"closed"}]`)
		default:
			t.Errorf("unexpected page %q", page)
			fmt.Fprint(w, `[]`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	issues, err := client.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if len(pagesServed) != 2 {
		t.Fatalf("expected exactly 2 page requests, got %v", pagesServed)
	}
}

func TestListDrainsUntilEmptyPageWithoutLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `[{"number":1,"title":"one","state":"open"}]`)
		case "2":
			fmt.Fprint(w, `[{"number":2,"title":"two","state":"open"}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	issues, err := client.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
}

func TestListSkipsPullRequestsAndAppliesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("state"); got != "all" {
			t.Errorf("expected default state all, got %q", got)
		}
		fmt.Fprint(w, `[
			{"number":1,"title":"crash on save","state":"open"},
			{"number":2,"title":"speed up CI","state":"open","pull_request":{"url":"x"}},
			{"number":3,"title":"docs","state":"open","body":"fix the crash section"}
		]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	issues, err := client.List(context.Background(), ListFilter{Query: "CRASH"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 matches, got %+v", issues)
	}
	for _, issue := range issues {
		if issue.IsPullRequest() {
			t.Fatalf("pull request leaked into results: %+v", issue)
		}
	}
}

func TestResponsesFailClosedOnMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number":0,"title":"","state":"open"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "acme/widgets", "secret")
	if _, err := client.Get(context.Background(), 5); !IsKind(err, KindValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func writeIssue(w http.ResponseWriter, number int, title, state string) {
	fmt.Fprintf(w, `{"number":%d,"title":%q,"state":%q,"created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}`,
		number, title, state)
}
