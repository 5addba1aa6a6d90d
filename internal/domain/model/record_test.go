package model

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLine(t *testing.T, line string) []string {
	t.Helper()
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	row, err := reader.Read()
	require.NoError(t, err)
	return row
}

func TestSerialize_RoundTrip(t *testing.T) {
	rec := Record{
		ID:         "abc-123",
		Commit:     "4f2e8c1d9a7b3e5f6c8d0a1b2c3d4e5f60718293",
		File:       "internal/server/handler.go",
		URL:        "https://git.example.com/proj/blob/main/internal/server/handler.go#L10",
		Lines:      "10:0-12:80",
		Title:      "Possible nil dereference",
		Comment:    "The pointer may be nil here,\nsee the \"init\" path.",
		Priority:   PriorityHigh,
		Category:   "Potential Issue",
		Additional: "found during migration review",
		Snippet:    "aGVsbG8=",
		Private:    1,
		Assignee:   "efisher",
		IssueID:    "#42",
		Status:     StatusOpen,
		Author:     "Jane Doe",
	}

	got := FinalizeRow(parseLine(t, rec.Serialize()))
	assert.Equal(t, rec, got)
}

func TestSerialize_EscapesQuotesCommasNewlines(t *testing.T) {
	rec := Record{ID: "x", Comment: `say "hi", then
continue`, Status: StatusOpen}

	line := rec.Serialize()
	assert.Contains(t, line, `"say ""hi"", then`)

	got := FinalizeRow(parseLine(t, line))
	assert.Equal(t, rec.Comment, got.Comment)
}

func TestFinalizeRow_LegacyRowDefaults(t *testing.T) {
	// A row written before assignee/issue_id/status/author existed.
	legacy := []string{
		"id-1", "deadbeef", "main.go", "", "3:0-3:0", "title", "body",
		"2", "style", "", "", "0",
	}

	rec := FinalizeRow(legacy)

	assert.Equal(t, "", rec.Assignee)
	assert.Equal(t, "", rec.IssueID)
	assert.Equal(t, StatusOpen, rec.Status)
	assert.Equal(t, "", rec.Author)
	assert.Equal(t, PriorityMedium, rec.Priority)
}

func TestFinalizeRow_EmptyStringSameAsAbsent(t *testing.T) {
	full := []string{
		"id-1", "", "main.go", "", "1:0-1:0", "t", "b",
		"1", "", "", "", "0",
		"", "", "", "",
	}

	rec := FinalizeRow(full)

	assert.Equal(t, "", rec.Assignee)
	assert.Equal(t, "", rec.IssueID)
	assert.Equal(t, StatusOpen, rec.Status)
	assert.Equal(t, "", rec.Author)
}

func TestFinalizeRow_GarbageNumericFields(t *testing.T) {
	rec := FinalizeRow([]string{"id", "", "f", "", "", "", "", "high", "", "", "", "yes"})
	assert.Equal(t, PriorityNone, rec.Priority)
	assert.Equal(t, 0, rec.Private)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"", StatusOpen},
		{"   ", StatusOpen},
		{"open", StatusOpen},
		{"OPEN", StatusOpen},
		{"check", StatusCheck},
		{"Closed", StatusClosed},
		{"wontfix", StatusWontfix},
		{"In Review", Status("In Review")}, // user-defined statuses survive
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStatus(tt.raw), "raw=%q", tt.raw)
	}
}

func TestIsHidden(t *testing.T) {
	hidden := []string{"Closed", "wontfix"}

	assert.True(t, IsHidden(StatusClosed, hidden))
	assert.True(t, IsHidden(Status("WONTFIX"), hidden))
	assert.False(t, IsHidden(StatusOpen, hidden))
	// Blank status is never hidden, even against a blank hidden entry.
	assert.False(t, IsHidden(Status(""), append(hidden, "")))
	assert.False(t, IsHidden(Status("   "), hidden))
}

func TestIssueNumber(t *testing.T) {
	tests := []struct {
		issueID string
		want    int
		ok      bool
	}{
		{"#42", 42, true},
		{"42", 42, true},
		{"GL-107", 107, true},
		{"", 0, false},
		{"#", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		n, ok := Record{IssueID: tt.issueID}.IssueNumber()
		assert.Equal(t, tt.ok, ok, "issueID=%q", tt.issueID)
		assert.Equal(t, tt.want, n, "issueID=%q", tt.issueID)
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "pkg/a.go", NormalizePath("/home/dev/proj", "/home/dev/proj/pkg/a.go"))
	assert.Equal(t, "pkg/a.go", NormalizePath("/home/dev/proj/", "/home/dev/proj/pkg/a.go"))
	assert.Equal(t, "/elsewhere/a.go", NormalizePath("/home/dev/proj", "/elsewhere/a.go"))
	assert.Equal(t, "pkg/a.go", NormalizePath("", "pkg/a.go"))
}

func TestPriorityFromSeverity(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityFromSeverity("critical"))
	assert.Equal(t, PriorityHigh, PriorityFromSeverity("Critical"))
	assert.Equal(t, PriorityMedium, PriorityFromSeverity("major"))
	assert.Equal(t, PriorityLow, PriorityFromSeverity("minor"))
	assert.Equal(t, PriorityLow, PriorityFromSeverity("trivial"))
	assert.Equal(t, PriorityLow, PriorityFromSeverity(""))
	assert.Equal(t, PriorityLow, PriorityFromSeverity("bogus"))
}

func TestHeaderLine_MatchesColumnOrder(t *testing.T) {
	row := parseLine(t, HeaderLine())
	assert.Equal(t, Header(), row)
	// The four extension columns stay last for backward compatibility.
	assert.Equal(t, []string{"assignee", "issue_id", "status", "author"}, row[len(row)-4:])
}
