package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// ErrTrackerNotConfigured aborts tracker operations before any side
// effect when no tracker client could be built from configuration.
var ErrTrackerNotConfigured = errors.New("tracker not configured")

// ExportService pushes un-synced records to the external tracker as new
// issues, stamping each record's issue identifier back into storage the
// moment its issue exists.
type ExportService struct {
	tracker       driven.TrackerClient
	store         driven.RecordStore
	renderer      IssueRenderer
	defaultLabels []string
}

// NewExportService creates an ExportService. tracker may be nil when
// the workspace has no tracker configuration; Run then aborts with
// ErrTrackerNotConfigured.
func NewExportService(tracker driven.TrackerClient, store driven.RecordStore, renderer IssueRenderer, defaultLabels []string) *ExportService {
	return &ExportService{
		tracker:       tracker,
		store:         store,
		renderer:      renderer,
		defaultLabels: defaultLabels,
	}
}

// Run exports every record lacking an issue identifier, or only those
// in ids when non-empty. Each record is created and stamped one at a
// time so a mid-run failure leaves prior exports durable. Per-record
// failures are collected; a failed identifier write-back is fatal
// because continuing would report an export the file does not show.
func (s *ExportService) Run(ctx context.Context, ids []string) (model.ExportResult, error) {
	var result model.ExportResult

	if s.tracker == nil {
		return result, ErrTrackerNotConfigured
	}
	if err := s.tracker.Validate(ctx); err != nil {
		return result, fmt.Errorf("validating tracker configuration: %w", err)
	}

	records, err := s.store.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("loading record set: %w", err)
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	for _, rec := range records {
		if rec.IssueID != "" {
			continue
		}
		if len(wanted) > 0 && !wanted[rec.ID] {
			continue
		}

		issue, err := s.exportOne(ctx, rec)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, model.RecordError{
				RecordID: rec.ID,
				Message:  err.Error(),
			})
			slog.Error("record export failed", "record", rec.ID, "error", err)
			continue
		}

		rec.IssueID = "#" + strconv.Itoa(issue.Number)
		if err := s.store.Update(ctx, rec); err != nil {
			// The issue exists remotely but the file does not say so;
			// reporting success here would corrupt the record set.
			return result, fmt.Errorf("stamping issue %s on record %s: %w", rec.IssueID, rec.ID, err)
		}
		result.Exported++
		slog.Info("record exported", "record", rec.ID, "issue", issue.Number, "url", issue.WebURL)
	}

	return result, nil
}

func (s *ExportService) exportOne(ctx context.Context, rec model.Record) (model.Issue, error) {
	body, err := s.renderer.Render(rec)
	if err != nil {
		return model.Issue{}, err
	}

	title := rec.Title
	if title == "" {
		title = titleFor(rec.Comment)
	}

	issue := model.NewIssue{
		Title:    title,
		Body:     body,
		Labels:   s.labelsFor(rec),
		Assignee: s.resolveAssignee(ctx, rec.Assignee),
	}
	return s.tracker.CreateIssue(ctx, issue)
}

func (s *ExportService) labelsFor(rec model.Record) []string {
	labels := make([]string, 0, len(s.defaultLabels)+2)
	labels = append(labels, s.defaultLabels...)
	if p := rec.Priority.Label(); p != "" {
		labels = append(labels, "priority:"+p)
	}
	if rec.Category != "" {
		labels = append(labels, rec.Category)
	}
	return labels
}

// resolveAssignee maps a free-text assignee to a tracker user. An exact
// case-insensitive match on handle or display name wins; otherwise the
// first search result is taken. Resolution failure is logged, never
// fatal; the issue is simply created unassigned.
func (s *ExportService) resolveAssignee(ctx context.Context, assignee string) *model.UserRef {
	handle := strings.TrimSpace(assignee)
	if handle == "" {
		return nil
	}

	candidates, err := s.tracker.SearchUsers(ctx, handle)
	if err != nil {
		slog.Warn("assignee lookup failed", "assignee", handle, "error", err)
		return nil
	}
	if len(candidates) == 0 {
		slog.Warn("assignee not found on tracker", "assignee", handle)
		return nil
	}

	for i := range candidates {
		if strings.EqualFold(candidates[i].Username, handle) || strings.EqualFold(candidates[i].Name, handle) {
			return &candidates[i]
		}
	}
	return &candidates[0]
}
