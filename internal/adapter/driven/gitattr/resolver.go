// Package gitattr resolves commit and author attribution for file lines
// by shelling out to git. Per-line results are cached with a short TTL
// to amortize repeated lookups during bulk imports.
package gitattr

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AttributionResolver = (*Resolver)(nil)

// RunFunc executes a git command in the given directory and returns its
// stdout. Injected so tests can fake git output.
type RunFunc func(ctx context.Context, dir string, args ...string) ([]byte, error)

func execGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

type lineKey struct {
	file string
	line int
}

type lineEntry struct {
	attr model.Attribution
	at   time.Time
}

// Resolver implements the AttributionResolver port over the git CLI.
type Resolver struct {
	run RunFunc
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	lines map[lineKey]lineEntry
	revs  map[string]string
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithRunner replaces the git subprocess runner.
func WithRunner(run RunFunc) Option {
	return func(r *Resolver) { r.run = run }
}

// WithClock replaces the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a Resolver whose per-line cache entries expire after ttl.
func New(ttl time.Duration, opts ...Option) *Resolver {
	r := &Resolver{
		run:   execGit,
		ttl:   ttl,
		now:   time.Now,
		lines: make(map[lineKey]lineEntry),
		revs:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentRevision returns the workspace's checked-out revision, or ""
// when the directory is not a git worktree. The result is cached per
// workspace root until InvalidateRevision.
func (r *Resolver) CurrentRevision(ctx context.Context, workspaceRoot string) string {
	r.mu.Lock()
	if rev, ok := r.revs[workspaceRoot]; ok {
		r.mu.Unlock()
		return rev
	}
	r.mu.Unlock()

	rev := ""
	if out, err := r.run(ctx, workspaceRoot, "rev-parse", "HEAD"); err == nil {
		rev = strings.TrimSpace(string(out))
	}

	r.mu.Lock()
	r.revs[workspaceRoot] = rev
	r.mu.Unlock()
	return rev
}

// RevisionForLine returns the revision that last touched the line. Any
// resolution failure falls back to CurrentRevision.
func (r *Resolver) RevisionForLine(ctx context.Context, workspaceRoot, file string, line int) string {
	attr, err := r.lineAttribution(ctx, workspaceRoot, file, line)
	if err != nil || attr.Revision == "" {
		return r.CurrentRevision(ctx, workspaceRoot)
	}
	return attr.Revision
}

// AuthorForLine returns the author that last touched the line, or ""
// when attribution fails.
func (r *Resolver) AuthorForLine(ctx context.Context, workspaceRoot, file string, line int) string {
	attr, err := r.lineAttribution(ctx, workspaceRoot, file, line)
	if err != nil {
		return ""
	}
	return attr.Author
}

func (r *Resolver) lineAttribution(ctx context.Context, workspaceRoot, file string, line int) (model.Attribution, error) {
	key := lineKey{file: file, line: line}

	r.mu.Lock()
	if entry, ok := r.lines[key]; ok && r.now().Sub(entry.at) < r.ttl {
		r.mu.Unlock()
		return entry.attr, nil
	}
	r.mu.Unlock()

	span := strconv.Itoa(line) + "," + strconv.Itoa(line)
	out, err := r.run(ctx, workspaceRoot, "blame", "--porcelain", "-L", span, "--", file)
	if err != nil {
		return model.Attribution{}, err
	}

	parsed := parsePorcelain(string(out))
	attr, ok := parsed[line]
	if !ok {
		// blame -L reports the requested span; take whatever came back.
		for _, a := range parsed {
			attr = a
			break
		}
	}

	r.cacheLine(key, attr)
	return attr, nil
}

// BatchAttribution blames the whole file once and slices the result per
// requested line. On total blame failure it returns the error; callers
// fall back to the single-line resolvers, whose per-line behavior this
// method otherwise matches exactly.
func (r *Resolver) BatchAttribution(ctx context.Context, workspaceRoot, file string, lines []int) (map[int]model.Attribution, error) {
	out, err := r.run(ctx, workspaceRoot, "blame", "--line-porcelain", "--", file)
	if err != nil {
		return nil, err
	}

	parsed := parsePorcelain(string(out))
	current := r.CurrentRevision(ctx, workspaceRoot)

	result := make(map[int]model.Attribution, len(lines))
	for _, line := range lines {
		attr, ok := parsed[line]
		if !ok || attr.Revision == "" {
			// Same fallback the single-line resolvers apply.
			attr = model.Attribution{Revision: current}
		}
		r.cacheLine(lineKey{file: file, line: line}, attr)
		result[line] = attr
	}
	return result, nil
}

func (r *Resolver) cacheLine(key lineKey, attr model.Attribution) {
	r.mu.Lock()
	r.lines[key] = lineEntry{attr: attr, at: r.now()}
	r.mu.Unlock()
}

// InvalidateLines clears the per-line attribution cache. Safe to call
// when the cache is already empty.
func (r *Resolver) InvalidateLines() {
	r.mu.Lock()
	r.lines = make(map[lineKey]lineEntry)
	r.mu.Unlock()
}

// InvalidateRevision clears the current-revision cache.
func (r *Resolver) InvalidateRevision() {
	r.mu.Lock()
	r.revs = make(map[string]string)
	r.mu.Unlock()
}

// parsePorcelain extracts per-line attribution from git blame porcelain
// output. Each block opens with "<40-hex sha> <orig> <final> [count]";
// an "author " header inside the block names the author; a tab-indented
// line closes the block.
func parsePorcelain(out string) map[int]model.Attribution {
	result := make(map[int]model.Attribution)

	var cur model.Attribution
	curLine := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "\t") {
			if curLine > 0 {
				result[curLine] = cur
			}
			curLine = 0
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 3 && isFullSHA(fields[0]) {
			if n, err := strconv.Atoi(fields[2]); err == nil {
				if curLine > 0 {
					result[curLine] = cur
				}
				curLine = n
				// Keep the author already seen for this sha: porcelain
				// omits repeated headers for previously-seen commits.
				author := ""
				for _, a := range result {
					if a.Revision == fields[0] {
						author = a.Author
						break
					}
				}
				cur = model.Attribution{Revision: fields[0], Author: author}
			}
			continue
		}
		if after, ok := strings.CutPrefix(line, "author "); ok {
			cur.Author = after
		}
	}
	if curLine > 0 {
		result[curLine] = cur
	}
	return result
}

func isFullSHA(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
