package driven

import (
	"context"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

// AttributionResolver resolves version-control attribution for files
// and lines under a workspace root. Per-line results are cached with a
// short TTL; failures degrade to empty values rather than propagating.
type AttributionResolver interface {
	// CurrentRevision returns the checked-out revision of the
	// workspace, or "" when the directory is not under version
	// control. Cached until InvalidateRevision.
	CurrentRevision(ctx context.Context, workspaceRoot string) string
	// RevisionForLine returns the revision that last touched the line,
	// falling back to CurrentRevision on any resolution failure.
	RevisionForLine(ctx context.Context, workspaceRoot, file string, line int) string
	// AuthorForLine returns the author that last touched the line, or
	// "" on failure.
	AuthorForLine(ctx context.Context, workspaceRoot, file string, line int) string
	// BatchAttribution resolves many lines of one file in a single
	// pass. Its per-line results are identical to the single-line
	// resolvers; it exists purely to amortize subprocess cost during
	// bulk imports. The error reports total batch failure only, in
	// which case callers fall back per line.
	BatchAttribution(ctx context.Context, workspaceRoot, file string, lines []int) (map[int]model.Attribution, error)
	// InvalidateLines clears the per-line attribution cache.
	InvalidateLines()
	// InvalidateRevision clears the current-revision cache.
	InvalidateRevision()
}
