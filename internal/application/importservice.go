// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// ImportService pulls comments out of the external review tool's stored
// sessions, normalizes them into records and merges them into the
// review file.
type ImportService struct {
	source      driven.ReviewSource
	store       driven.RecordStore
	attr        driven.AttributionResolver
	workspace   string
	urlTemplate string
	baseURL     string
}

// NewImportService creates an ImportService. urlTemplate and baseURL
// configure deep-link building; at least one must be set before Run
// will proceed.
func NewImportService(
	source driven.ReviewSource,
	store driven.RecordStore,
	attr driven.AttributionResolver,
	workspace, urlTemplate, baseURL string,
) *ImportService {
	return &ImportService{
		source:      source,
		store:       store,
		attr:        attr,
		workspace:   workspace,
		urlTemplate: urlTemplate,
		baseURL:     baseURL,
	}
}

// Run executes the import pipeline: filter sessions, extract comments,
// normalize each survivor into a record, merge against the current
// record set and rewrite the file. Configuration problems abort before
// anything is read or written; per-comment problems are tallied, never
// fatal.
func (s *ImportService) Run(ctx context.Context, filter model.SessionFilter) (model.ImportStats, error) {
	var stats model.ImportStats

	links, err := newLinkBuilder(s.urlTemplate, s.baseURL)
	if err != nil {
		return stats, err
	}

	sessions, err := s.source.Sessions(ctx)
	if err != nil {
		return stats, fmt.Errorf("reading review sessions: %w", err)
	}

	selected := FilterSessions(sessions, filter)
	stats.ReviewsConsidered = len(selected)

	var incoming []model.Record
	for _, session := range selected {
		incoming = append(incoming, s.normalizeSession(ctx, session, links, &stats)...)
	}

	existing, err := s.store.Load(ctx)
	if err != nil {
		return stats, fmt.Errorf("loading record set: %w", err)
	}

	result := model.Merge(existing, incoming)
	stats.SkippedDuplicate = result.Skipped
	stats.CommentsImported = len(incoming) - result.Skipped

	if stats.CommentsImported > 0 {
		if err := s.store.ReplaceAll(ctx, result.Merged); err != nil {
			return stats, fmt.Errorf("persisting merged record set: %w", err)
		}
	}

	slog.Info("import complete",
		"reviews", stats.ReviewsConsidered,
		"imported", stats.CommentsImported,
		"skipped_resolved", stats.SkippedResolved,
		"skipped_no_file", stats.SkippedNoFile,
		"skipped_no_message", stats.SkippedNoMessage,
		"skipped_duplicate", stats.SkippedDuplicate,
	)
	return stats, nil
}

// normalizeSession turns one session's surviving comments into records,
// appended in the order the source presents them. Attribution is
// batched per file, with per-comment fallback when the batch blame
// fails.
func (s *ImportService) normalizeSession(ctx context.Context, session model.ReviewSession, links *linkBuilder, stats *model.ImportStats) []model.Record {
	files := make([]string, 0, len(session.Comments))
	for f := range session.Comments {
		files = append(files, f)
	}
	sort.Strings(files)

	var records []model.Record
	for _, file := range files {
		comments := session.Comments[file]

		var surviving []model.RawComment
		var lines []int
		for _, c := range comments {
			switch {
			case c.Resolved:
				stats.SkippedResolved++
			case c.File == "":
				stats.SkippedNoFile++
			case strings.TrimSpace(c.Body) == "":
				stats.SkippedNoMessage++
			default:
				surviving = append(surviving, c)
				lines = append(lines, c.StartLine)
			}
		}
		if len(surviving) == 0 {
			continue
		}

		batch, err := s.attr.BatchAttribution(ctx, s.workspace, file, lines)
		if err != nil {
			slog.Warn("batch attribution failed, falling back per line",
				"file", file, "error", err)
			batch = nil
		}

		for _, c := range surviving {
			attr, ok := batch[c.StartLine]
			if !ok {
				attr = model.Attribution{
					Revision: s.attr.RevisionForLine(ctx, s.workspace, c.File, c.StartLine),
					Author:   s.attr.AuthorForLine(ctx, s.workspace, c.File, c.StartLine),
				}
			}
			records = append(records, s.normalizeComment(c, attr, links))
		}
	}
	return records
}

func (s *ImportService) normalizeComment(c model.RawComment, attr model.Attribution, links *linkBuilder) model.Record {
	body := formatBody(c)
	file := model.NormalizePath(s.workspace, c.File)

	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	return model.Record{
		ID:       id,
		Commit:   attr.Revision,
		File:     file,
		URL:      links.Build(attr.Revision, file, c.StartLine, c.EndLine),
		Lines:    model.LineRange(c.StartLine, 0, c.EndLine, 0),
		Title:    titleFor(body),
		Comment:  body,
		Priority: model.PriorityFromSeverity(c.Severity),
		Category: categoryFromTags(c.Tags),
		Private:  0,
		Assignee: "",
		IssueID:  "",
		Status:   model.StatusOpen,
		Author:   attr.Author,
	}
}

// formatBody concatenates the comment body with its suggestion list and
// reasoning trail. Each section heading appears only when the section
// is non-empty.
func formatBody(c model.RawComment) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Body))

	if len(c.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:\n")
		for i, sug := range c.Suggestions {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("- ")
			b.WriteString(sug)
		}
	}

	if len(c.Reasoning) > 0 {
		b.WriteString("\n\nAnalysis:\n")
		b.WriteString(strings.Join(c.Reasoning, "\n"))
	}

	return b.String()
}

// categoryFromTags derives the record category from the first
// classification tag, converting snake_case into capitalized words.
// No tags means "Unknown".
func categoryFromTags(tags []string) string {
	if len(tags) == 0 || strings.TrimSpace(tags[0]) == "" {
		return "Unknown"
	}
	words := strings.Split(strings.TrimSpace(tags[0]), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// FilterSessions applies the branch and date criteria (AND), then
// LatestOnly against whatever survived.
func FilterSessions(sessions []model.ReviewSession, f model.SessionFilter) []model.ReviewSession {
	var out []model.ReviewSession
	for _, s := range sessions {
		if f.Branch != "" && s.Branch != f.Branch {
			continue
		}
		if f.Since != nil && s.CompletedAt.Before(*f.Since) {
			continue
		}
		if f.Until != nil && s.CompletedAt.After(*f.Until) {
			continue
		}
		out = append(out, s)
	}

	if f.LatestOnly && len(out) > 1 {
		latest := out[0]
		for _, s := range out[1:] {
			if s.CompletedAt.After(latest.CompletedAt) {
				latest = s
			}
		}
		out = []model.ReviewSession{latest}
	}
	return out
}

// linkBuilder builds record deep links. A template takes precedence;
// otherwise the base URL concatenation scheme applies. Having neither
// is a configuration error.
type linkBuilder struct {
	template string
	baseURL  string
}

var errNoLinkConfig = errors.New("deep link configuration missing: set url_template or base_url")

func newLinkBuilder(tmpl, base string) (*linkBuilder, error) {
	if tmpl == "" && base == "" {
		return nil, errNoLinkConfig
	}
	if tmpl != "" && !strings.Contains(tmpl, "{file}") {
		return nil, fmt.Errorf("url_template %q lacks the {file} placeholder", tmpl)
	}
	return &linkBuilder{template: tmpl, baseURL: base}, nil
}

// Build substitutes the {sha}, {file}, {start} and {end} placeholders,
// or concatenates base URL and file path when no template is set.
func (l *linkBuilder) Build(revision, file string, start, end int) string {
	if l.template != "" {
		r := strings.NewReplacer(
			"{sha}", revision,
			"{file}", file,
			"{start}", strconv.Itoa(start),
			"{end}", strconv.Itoa(end),
		)
		return r.Replace(l.template)
	}
	return strings.TrimSuffix(l.baseURL, "/") + "/" + strings.TrimPrefix(file, "/")
}
