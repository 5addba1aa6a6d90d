// Package model contains the domain types for review annotations:
// the persisted comment record, its CSV shape, and the status and
// priority enumerations.
package model

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Status is the review lifecycle state of a record. The recognized
// values are closed variants; unrecognized non-blank values read from
// a CSV file are preserved as-is so that user-defined statuses survive
// a round trip. A blank or whitespace-only status always reads back as
// StatusOpen.
type Status string

const (
	StatusOpen    Status = "Open"
	StatusCheck   Status = "Check" // remote issue closed, needs local recheck
	StatusWontfix Status = "Wontfix"
	StatusClosed  Status = "Closed"
)

// ParseStatus normalizes a raw status value. Recognized values are
// canonicalized case-insensitively; blank input falls back to
// StatusOpen; anything else passes through unchanged.
func ParseStatus(raw string) Status {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StatusOpen
	}
	for _, s := range []Status{StatusOpen, StatusCheck, StatusWontfix, StatusClosed} {
		if strings.EqualFold(trimmed, string(s)) {
			return s
		}
	}
	return Status(trimmed)
}

// Priority is the numeric priority scale of a record.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Label returns the human-readable name of the priority, or "" for
// PriorityNone.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return ""
	}
}

// PriorityFromSeverity maps an external review tool's severity label to
// the internal priority scale. Unknown or absent severities map to low.
func PriorityFromSeverity(severity string) Priority {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return PriorityHigh
	case "major":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Record is one persisted review annotation. Field order mirrors the
// CSV column order; see Header.
type Record struct {
	ID         string   // stable opaque identifier, unique within a record set
	Commit     string   // revision that the annotated lines belong to, may be empty
	File       string   // workspace-relative path, forward slashes
	URL        string   // deep link into the hosted source browser, may be empty
	Lines      string   // "startLine:startCol-endLine:endCol", "|"-separated for multiple ranges
	Title      string   // first line of the comment, at most 100 characters
	Comment    string   // free-text body
	Priority   Priority // 0=unset 1=low 2=medium 3=high
	Category   string
	Additional string
	Snippet    string // encoded source excerpt, may be empty
	Private    int    // 0 or 1
	Assignee   string
	IssueID    string // external tracker issue identifier, may carry a leading marker such as "#"
	Status     Status
	Author     string
}

// columns is the canonical CSV column order. The first twelve are the
// legacy columns; assignee, issue_id, status and author were appended
// later and must stay last so files written by older versions still
// parse.
var columns = []string{
	"id", "commit", "file", "url", "lines", "title", "comment",
	"priority", "category", "additional", "snippet", "private",
	"assignee", "issue_id", "status", "author",
}

// Header returns the canonical CSV column names in serialization order.
func Header() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// HeaderLine returns the serialized CSV header row.
func HeaderLine() string {
	return quoteJoin(columns)
}

// DefaultFor returns the default value for a column that is absent from
// a parsed row (a file written before the column existed) or unset on a
// freshly constructed record.
func DefaultFor(column string) string {
	if column == "status" {
		return string(StatusOpen)
	}
	return ""
}

// Serialize encodes the record as one CSV line in canonical column
// order. Every field is quoted and embedded quotes are doubled, so the
// result is safe regardless of commas or newlines in field values.
// Serialization is pure string construction and cannot fail.
func (r Record) Serialize() string {
	fields := []string{
		r.ID, r.Commit, r.File, r.URL, r.Lines, r.Title, r.Comment,
		strconv.Itoa(int(r.Priority)), r.Category, r.Additional,
		r.Snippet, strconv.Itoa(r.Private),
		r.Assignee, r.IssueID, string(r.Status), r.Author,
	}
	return quoteJoin(fields)
}

func quoteJoin(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	return b.String()
}

// FinalizeRow builds a Record from a raw parsed CSV row. Rows shorter
// than the canonical column count are padded: the legacy numeric fields
// coerce to zero on garbage, and the four trailing columns receive
// their defaults whether they are absent or present-but-empty (the two
// cases are deliberately indistinguishable).
func FinalizeRow(row []string) Record {
	at := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	rec := Record{
		ID:         at(0),
		Commit:     at(1),
		File:       at(2),
		URL:        at(3),
		Lines:      at(4),
		Title:      at(5),
		Comment:    at(6),
		Priority:   Priority(atoiOrZero(at(7))),
		Category:   at(8),
		Additional: at(9),
		Snippet:    at(10),
		Private:    atoiOrZero(at(11)),
	}

	rec.Assignee = stringOrDefault(at(12), "assignee")
	rec.IssueID = stringOrDefault(at(13), "issue_id")
	rec.Status = ParseStatus(at(14))
	rec.Author = stringOrDefault(at(15), "author")

	return rec
}

func stringOrDefault(v, column string) string {
	if strings.TrimSpace(v) == "" {
		return DefaultFor(column)
	}
	return v
}

func atoiOrZero(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// IssueNumber returns the numeric part of the record's external issue
// identifier, stripping any leading non-numeric marker (for example
// "#42" yields 42). The second return is false when the identifier is
// empty or carries no digits.
func (r Record) IssueNumber() (int, bool) {
	s := strings.TrimSpace(r.IssueID)
	start := 0
	for start < len(s) && (s[start] < '0' || s[start] > '9') {
		start++
	}
	s = s[start:]
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizePath converts a host path to the stored representation:
// forward slashes, relative to the workspace root when the path is
// inside it. Both sides of any record/path comparison must go through
// this.
func NormalizePath(workspaceRoot, path string) string {
	p := filepath.ToSlash(path)
	if workspaceRoot == "" {
		return p
	}
	root := strings.TrimSuffix(filepath.ToSlash(workspaceRoot), "/")
	if rel, ok := strings.CutPrefix(p, root+"/"); ok {
		return rel
	}
	return p
}

// IsHidden reports whether a record with the given status should be
// excluded from inline display. Matching against the configured hidden
// list is case-insensitive; a blank status is never hidden.
func IsHidden(status Status, hidden []string) bool {
	s := strings.TrimSpace(string(status))
	if s == "" {
		return false
	}
	for _, h := range hidden {
		if strings.EqualFold(s, strings.TrimSpace(h)) {
			return true
		}
	}
	return false
}

// LineRange formats a line span as the stored range descriptor.
func LineRange(startLine, startCol, endLine, endCol int) string {
	return strconv.Itoa(startLine) + ":" + strconv.Itoa(startCol) + "-" +
		strconv.Itoa(endLine) + ":" + strconv.Itoa(endCol)
}
