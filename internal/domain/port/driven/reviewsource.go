package driven

import (
	"context"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

// ReviewSource is the read-only query surface over the external static
// analysis tool's stored review sessions.
type ReviewSource interface {
	// Sessions returns every finished review session. Filtering is the
	// import pipeline's job, so it stays testable as a pure function.
	Sessions(ctx context.Context) ([]model.ReviewSession, error)
}
