package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// SyncService reconciles local record status against the tracker:
// records whose remote issue has been closed are marked StatusCheck so
// the reviewer re-examines them.
type SyncService struct {
	tracker driven.TrackerClient
	store   driven.RecordStore
}

// NewSyncService creates a SyncService. tracker may be nil when the
// workspace has no tracker configuration; Run then aborts with
// ErrTrackerNotConfigured.
func NewSyncService(tracker driven.TrackerClient, store driven.RecordStore) *SyncService {
	return &SyncService{tracker: tracker, store: store}
}

// Run selects every record with an issue identifier whose status is not
// Closed, fetches the corresponding issues in bounded batches and marks
// locally-open records of closed issues as StatusCheck. Identifiers the
// tracker has no issue for are reported in NotFound; the issue may
// have been deleted or moved, which is data, not failure. Batch request
// failures land in Errors and do not stop the remaining batches.
func (s *SyncService) Run(ctx context.Context) (model.SyncResult, error) {
	var result model.SyncResult

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

	type selected struct {
		record model.Record
		number int
	}
	var sel []selected
	var numbers []int
	seen := make(map[int]bool)
	for _, rec := range records {
		if rec.IssueID == "" || rec.Status == model.StatusClosed {
			continue
		}
		number, ok := rec.IssueNumber()
		if !ok {
			result.Errors = append(result.Errors, model.RecordError{
				RecordID: rec.ID,
				IssueID:  rec.IssueID,
				Message:  "issue identifier has no numeric part",
			})
			continue
		}
		sel = append(sel, selected{record: rec, number: number})
		if !seen[number] {
			seen[number] = true
			numbers = append(numbers, number)
		}
	}
	if len(sel) == 0 {
		return result, nil
	}

	issues, failed := s.fetchBatches(ctx, numbers, &result)

	notFound := make(map[string]bool)
	for _, item := range sel {
		result.Checked++

		if failed[item.number] {
			continue // batch failure already reported
		}
		issue, ok := issues[item.number]
		if !ok {
			if !notFound[item.record.IssueID] {
				notFound[item.record.IssueID] = true
				result.NotFound = append(result.NotFound, item.record.IssueID)
			}
			continue
		}

		if issue.State != model.IssueStateClosed || item.record.Status == model.StatusCheck {
			continue
		}

		rec := item.record
		rec.Status = model.StatusCheck
		if err := s.store.Update(ctx, rec); err != nil {
			return result, fmt.Errorf("updating record %s: %w", rec.ID, err)
		}
		result.Updated++
		slog.Info("record marked for recheck", "record", rec.ID, "issue", rec.IssueID)
	}

	return result, nil
}

// fetchBatches looks up the issues in chunks bounded by the tracker's
// batch cap. A failed chunk marks its numbers so callers can tell
// "request failed" apart from "issue not found".
func (s *SyncService) fetchBatches(ctx context.Context, numbers []int, result *model.SyncResult) (map[int]model.Issue, map[int]bool) {
	issues := make(map[int]model.Issue, len(numbers))
	failed := make(map[int]bool)

	size := s.tracker.MaxBatchSize()
	for start := 0; start < len(numbers); start += size {
		end := min(start+size, len(numbers))
		chunk := numbers[start:end]

		got, err := s.tracker.GetIssuesByNumbers(ctx, chunk)
		if err != nil {
			for _, n := range chunk {
				failed[n] = true
			}
			result.Errors = append(result.Errors, model.RecordError{
				Message: fmt.Sprintf("issue lookup failed for %d identifiers: %v", len(chunk), err),
			})
			slog.Error("issue batch lookup failed", "count", len(chunk), "error", err)
			continue
		}
		for n, issue := range got {
			issues[n] = issue
		}
	}
	return issues, failed
}
