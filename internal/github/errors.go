package github

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies tracker failures so callers can pick a policy
// per class instead of parsing message strings.
type ErrorKind string

const (
	// KindAuthFailed covers rejected credentials. Every later call in a
	// batch would fail the same way, so callers should abort.
	KindAuthFailed ErrorKind = "auth_failed"
	// KindRateLimited carries the reset time; callers should stop and
	// report it rather than poll.
	KindRateLimited ErrorKind = "rate_limited"
	KindNotFound    ErrorKind = "not_found"
	// KindValidationFailed covers payloads the tracker rejected and
	// responses missing fields the sync relies on.
	KindValidationFailed ErrorKind = "validation_failed"
	// KindTransportFailure covers network errors and unexpected server
	// statuses. Retrying is the caller's call, never automatic.
	KindTransportFailure ErrorKind = "transport_failure"
)

// RemoteError is a classified failure from the issue tracker.
type RemoteError struct {
	Kind    ErrorKind
	Status  int
	Message string
	ResetAt time.Time // only set for KindRateLimited
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Kind == KindRateLimited && !e.ResetAt.IsZero():
		return fmt.Sprintf("%s: resets at %s", e.Kind, e.ResetAt.Format(time.RFC3339))
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("%s: status %d", e.Kind, e.Status)
	default:
		return string(e.Kind)
	}
}

// IsKind reports whether err is a RemoteError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.Kind == kind
}
