package model

// ImportStats is the result of one import run. The skip counters are
// mutually exclusive per comment and, together with CommentsImported,
// sum to the total number of comments seen.
type ImportStats struct {
	ReviewsConsidered int
	CommentsImported  int
	SkippedResolved   int // resolved upstream before import
	SkippedNoFile     int
	SkippedNoMessage  int
	SkippedDuplicate  int
}

// RecordError is a per-record failure surfaced in an operation result
// rather than aborting the run.
type RecordError struct {
	RecordID string
	IssueID  string
	Message  string
}

// ExportResult is the outcome of exporting records to the tracker.
// A record counts as Exported only after its issue identifier has been
// written back to persistent storage.
type ExportResult struct {
	Exported int
	Failed   int
	Errors   []RecordError
}

// SyncResult is the outcome of reconciling local status against the
// tracker. NotFound lists issue identifiers the tracker had no match
// for; these are expected outcomes, kept separate from Errors, which
// holds genuine request failures.
type SyncResult struct {
	Checked  int
	Updated  int
	NotFound []string
	Errors   []RecordError
}
