// Package report exports a record set as a JSON, Markdown or HTML
// review report.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// jsonRecord is the export shape of one record. Field names follow the
// CSV column names.
type jsonRecord struct {
	ID         string `json:"id"`
	Commit     string `json:"commit,omitempty"`
	File       string `json:"file"`
	URL        string `json:"url,omitempty"`
	Lines      string `json:"lines"`
	Title      string `json:"title"`
	Comment    string `json:"comment"`
	Priority   int    `json:"priority"`
	Category   string `json:"category,omitempty"`
	Additional string `json:"additional,omitempty"`
	Private    int    `json:"private"`
	Assignee   string `json:"assignee,omitempty"`
	IssueID    string `json:"issue_id,omitempty"`
	Status     string `json:"status"`
	Author     string `json:"author,omitempty"`
}

// WriteJSON emits the record set as an indented JSON array.
func WriteJSON(w io.Writer, records []model.Record) error {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, jsonRecord{
			ID: r.ID, Commit: r.Commit, File: r.File, URL: r.URL,
			Lines: r.Lines, Title: r.Title, Comment: r.Comment,
			Priority: int(r.Priority), Category: r.Category,
			Additional: r.Additional, Private: r.Private,
			Assignee: r.Assignee, IssueID: r.IssueID,
			Status: string(r.Status), Author: r.Author,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteMarkdown emits the record set grouped by file, each file sorted
// by its records' line descriptors.
func WriteMarkdown(w io.Writer, records []model.Record) error {
	_, err := io.WriteString(w, buildMarkdown(records))
	return err
}

func buildMarkdown(records []model.Record) string {
	byFile := make(map[string][]model.Record)
	for _, r := range records {
		byFile[r.File] = append(byFile[r.File], r)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	var b strings.Builder
	b.WriteString("# Code Review\n")
	for _, f := range files {
		fmt.Fprintf(&b, "\n## %s\n\n", f)
		recs := byFile[f]
		sort.SliceStable(recs, func(i, j int) bool {
			return firstLine(recs[i].Lines) < firstLine(recs[j].Lines)
		})
		for _, r := range recs {
			fmt.Fprintf(&b, "### %s (%s)\n\n", r.Title, r.Lines)
			if label := r.Priority.Label(); label != "" {
				fmt.Fprintf(&b, "**Priority:** %s  \n", label)
			}
			if r.Category != "" {
				fmt.Fprintf(&b, "**Category:** %s  \n", r.Category)
			}
			if r.Status != "" {
				fmt.Fprintf(&b, "**Status:** %s  \n", r.Status)
			}
			if r.Assignee != "" {
				fmt.Fprintf(&b, "**Assignee:** %s  \n", r.Assignee)
			}
			if r.IssueID != "" {
				fmt.Fprintf(&b, "**Issue:** %s  \n", r.IssueID)
			}
			b.WriteString("\n")
			b.WriteString(r.Comment)
			b.WriteString("\n\n")
			if r.Additional != "" {
				fmt.Fprintf(&b, "%s\n\n", r.Additional)
			}
			if r.URL != "" {
				fmt.Fprintf(&b, "[source](%s)\n\n", r.URL)
			}
		}
	}
	return b.String()
}

// firstLine extracts the leading line number of a range descriptor for
// ordering; malformed descriptors sort first.
func firstLine(lines string) int {
	head, _, _ := strings.Cut(lines, ":")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return n
}

// WriteHTML renders the Markdown report to sanitized HTML wrapped in a
// minimal page shell.
func WriteHTML(w io.Writer, records []model.Record) error {
	var buf bytes.Buffer
	md := buildMarkdown(records)
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	body := htmlSanitizer.Sanitize(buf.String())

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Code Review</title></head>
<body>
%s
</body>
</html>
`, body)
	return err
}
