package model

import (
	"fmt"
	"time"
)

// IssueState is the remote tracker's issue state. Trackers report
// exactly two states; adapters map provider-specific spellings (GitLab
// says "opened") onto these.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// Issue is a tracker issue as seen by the sync engine. ID is the
// tracker's internal identifier; Number is the human-facing sequence
// number records are matched by.
type Issue struct {
	ID     int64
	Number int
	State  IssueState
	WebURL string
}

// NewIssue is the payload for creating a tracker issue from a record.
type NewIssue struct {
	Title    string
	Body     string
	Labels   []string
	Assignee *UserRef // nil when no assignee could be resolved
}

// UserRef identifies a tracker user. GitLab assigns by ID, GitHub by
// username; adapters use whichever they need.
type UserRef struct {
	ID       int64
	Username string
	Name     string
}

// TrackerErrorKind classifies a failed tracker request.
type TrackerErrorKind string

const (
	TrackerErrBadRequest   TrackerErrorKind = "bad_request"
	TrackerErrUnauthorized TrackerErrorKind = "unauthorized"
	TrackerErrForbidden    TrackerErrorKind = "forbidden"
	TrackerErrNotFound     TrackerErrorKind = "not_found"
	TrackerErrValidation   TrackerErrorKind = "validation"
	TrackerErrRateLimited  TrackerErrorKind = "rate_limited"
	TrackerErrServer       TrackerErrorKind = "server"
	TrackerErrNetwork      TrackerErrorKind = "network"
)

// TrackerError is a classified tracker request failure. RetryAfter
// carries the server-supplied rate-limit hint when present.
type TrackerError struct {
	Kind       TrackerErrorKind
	StatusCode int
	RetryAfter time.Duration
	Op         string
	Err        error
}

func (e *TrackerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, statusLabel(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Kind, statusLabel(e.StatusCode))
}

func (e *TrackerError) Unwrap() error { return e.Err }

// Retryable reports whether the failure class is eligible for automatic
// retry. Only rate-limited and network-class failures retry; every
// other class fails immediately.
func (e *TrackerError) Retryable() bool {
	return e.Kind == TrackerErrRateLimited || e.Kind == TrackerErrNetwork
}

func statusLabel(code int) string {
	if code == 0 {
		return "no response"
	}
	return fmt.Sprintf("HTTP %d", code)
}

// ClassifyStatus maps an HTTP status code onto the tracker error
// taxonomy. A zero code means the request never produced a response.
func ClassifyStatus(code int) TrackerErrorKind {
	switch {
	case code == 0:
		return TrackerErrNetwork
	case code == 400:
		return TrackerErrBadRequest
	case code == 401:
		return TrackerErrUnauthorized
	case code == 403:
		return TrackerErrForbidden
	case code == 404:
		return TrackerErrNotFound
	case code == 422:
		return TrackerErrValidation
	case code == 429:
		return TrackerErrRateLimited
	case code >= 500:
		return TrackerErrServer
	default:
		return TrackerErrBadRequest
	}
}
