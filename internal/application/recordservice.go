package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// RecordService handles manual annotation and record listing.
type RecordService struct {
	store     driven.RecordStore
	attr      driven.AttributionResolver
	workspace string
	author    string
	hidden    []string
}

// NewRecordService creates a RecordService. author stamps manually
// created records; hidden is the status list excluded from display.
func NewRecordService(store driven.RecordStore, attr driven.AttributionResolver, workspace, author string, hidden []string) *RecordService {
	return &RecordService{
		store:     store,
		attr:      attr,
		workspace: workspace,
		author:    author,
		hidden:    hidden,
	}
}

// NewAnnotation is a manually authored comment on a line range.
type NewAnnotation struct {
	File       string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
	Comment    string
	Priority   model.Priority
	Category   string
	Additional string
	Assignee   string
	Private    bool
}

// Create builds a record from a manual annotation, stamps attribution
// from version control and appends it to the review file.
func (s *RecordService) Create(ctx context.Context, ann NewAnnotation) (model.Record, error) {
	if ann.File == "" {
		return model.Record{}, fmt.Errorf("annotation requires a file")
	}
	if strings.TrimSpace(ann.Comment) == "" {
		return model.Record{}, fmt.Errorf("annotation requires a comment")
	}
	if ann.EndLine < ann.StartLine {
		ann.EndLine = ann.StartLine
	}

	private := 0
	if ann.Private {
		private = 1
	}

	rec := model.Record{
		ID:         uuid.NewString(),
		Commit:     s.attr.RevisionForLine(ctx, s.workspace, ann.File, ann.StartLine),
		File:       model.NormalizePath(s.workspace, ann.File),
		Lines:      model.LineRange(ann.StartLine, ann.StartCol, ann.EndLine, ann.EndCol),
		Title:      titleFor(ann.Comment),
		Comment:    strings.TrimSpace(ann.Comment),
		Priority:   ann.Priority,
		Category:   ann.Category,
		Additional: ann.Additional,
		Private:    private,
		Assignee:   ann.Assignee,
		IssueID:    "",
		Status:     model.StatusOpen,
		Author:     s.author,
	}

	if err := s.store.Append(ctx, []model.Record{rec}); err != nil {
		return model.Record{}, fmt.Errorf("appending record: %w", err)
	}
	return rec, nil
}

// ListAll returns the full record set in file order.
func (s *RecordService) ListAll(ctx context.Context) ([]model.Record, error) {
	return s.store.Load(ctx)
}

// ListVisible returns the record set with hidden statuses filtered out.
func (s *RecordService) ListVisible(ctx context.Context) ([]model.Record, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Record, 0, len(records))
	for _, r := range records {
		if model.IsHidden(r.Status, s.hidden) {
			continue
		}
		visible = append(visible, r)
	}
	return visible, nil
}
