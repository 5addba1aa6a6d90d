// Package reviewdb reads review sessions out of the external static
// analysis tool's local SQLite database. The database is owned by that
// tool; this adapter opens it read-only and never migrates or writes.
package reviewdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewSource = (*DB)(nil)

// DB is the read-only SQLite implementation of the ReviewSource port.
type DB struct {
	db *sql.DB
}

// Open opens the analysis tool's session database read-only. A missing
// file is an error: import cannot proceed without a source.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("review database %s: %w", path, err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open review database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping review database %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// Close releases the database handle.
func (d *DB) Close() error { return d.db.Close() }

// Sessions returns every finished review session with its comments,
// keyed by target file.
func (d *DB) Sessions(ctx context.Context) ([]model.ReviewSession, error) {
	const query = `
		SELECT id, status, branch, started_at, completed_at
		FROM reviews
		WHERE completed_at IS NOT NULL AND completed_at != ''
		ORDER BY completed_at
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var sessions []model.ReviewSession
	index := make(map[string]int)
	for rows.Next() {
		var s model.ReviewSession
		var startedAt, completedAt string
		if err := rows.Scan(&s.ID, &s.Status, &s.Branch, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		s.StartedAt = parseTime(startedAt)
		s.CompletedAt = parseTime(completedAt)
		s.Comments = make(map[string][]model.RawComment)
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	if err := d.loadComments(ctx, sessions, index); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (d *DB) loadComments(ctx context.Context, sessions []model.ReviewSession, index map[string]int) error {
	const query = `
		SELECT review_id, id, file, start_line, end_line, body,
		       severity, tags, suggestions, reasoning, resolved
		FROM review_comments
		ORDER BY review_id, file, start_line
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query review comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reviewID string
		var c model.RawComment
		var severity sql.NullString
		var tags, suggestions, reasoning sql.NullString
		var resolved int
		if err := rows.Scan(&reviewID, &c.ID, &c.File, &c.StartLine, &c.EndLine,
			&c.Body, &severity, &tags, &suggestions, &reasoning, &resolved); err != nil {
			return fmt.Errorf("scan review comment: %w", err)
		}

		c.Severity = severity.String
		c.Tags = parseJSONList(tags)
		c.Suggestions = parseJSONList(suggestions)
		c.Reasoning = parseJSONList(reasoning)
		c.Resolved = resolved != 0

		i, ok := index[reviewID]
		if !ok {
			continue // comment of an unfinished review
		}
		sessions[i].Comments[c.File] = append(sessions[i].Comments[c.File], c)
	}
	return rows.Err()
}

// parseJSONList decodes a JSON string array column. Malformed or empty
// values read as nil; a best-effort record is still produced.
func parseJSONList(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil
	}
	return out
}

func parseTime(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
