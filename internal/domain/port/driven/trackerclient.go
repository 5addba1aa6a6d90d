package driven

import (
	"context"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

// TrackerClient is the driven port for the external issue tracker.
// Implementations classify request failures into model.TrackerError and
// apply the retry policy for transient classes themselves; callers see
// either a result or a classified, already-retried failure.
type TrackerClient interface {
	// Validate checks that the client is fully configured and the
	// target project is reachable. Sync operations call it before any
	// mutation so that misconfiguration aborts with zero side effects.
	Validate(ctx context.Context) error
	// CreateIssue opens a new issue and returns it, including the
	// human-facing number used for later matching.
	CreateIssue(ctx context.Context, issue model.NewIssue) (model.Issue, error)
	// GetIssuesByNumbers fetches issues by their human-facing numbers.
	// Numbers with no match are simply absent from the returned map;
	// not-found is data, not an error. len(numbers) must not exceed
	// MaxBatchSize.
	GetIssuesByNumbers(ctx context.Context, numbers []int) (map[int]model.Issue, error)
	// SearchUsers returns candidate users for an assignee handle.
	SearchUsers(ctx context.Context, query string) ([]model.UserRef, error)
	// MaxBatchSize is the largest number of issues one
	// GetIssuesByNumbers call may request.
	MaxBatchSize() int
}
