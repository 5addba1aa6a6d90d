// Package csvstore implements the RecordStore port on a CSV sidecar
// file. Reads tolerate files written before the trailing columns
// existed; writes always emit the full canonical column set and replace
// the whole file atomically.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecordStore = (*Store)(nil)

// Store is the CSV-file implementation of the RecordStore port.
type Store struct {
	path string
}

// New creates a Store backed by the given file path. The file does not
// have to exist yet; it is created on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the full record set. A missing file is an empty set.
// Rows shorter than the canonical column count finalize with defaults,
// so files written before the assignee/issue_id/status/author columns
// existed read back correctly.
func (s *Store) Load(_ context.Context) ([]model.Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1 // legacy rows are shorter
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return []model.Record{}, nil
	}

	if err := validateHeader(rows[0]); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		records = append(records, model.FinalizeRow(row))
	}
	return records, nil
}

// validateHeader checks the file's first row against the canonical
// column names. Legacy files carry a prefix of the canonical header, so
// only the columns present are compared.
func validateHeader(row []string) error {
	canonical := model.Header()
	if len(row) == 0 || len(row) > len(canonical) {
		return fmt.Errorf("invalid header: %d columns", len(row))
	}
	for i, col := range row {
		if !strings.EqualFold(strings.TrimSpace(col), canonical[i]) {
			return fmt.Errorf("invalid header: column %d is %q, want %q", i, col, canonical[i])
		}
	}
	return nil
}

// ReplaceAll rewrites the complete file: header plus one serialized
// line per record, written atomically so a crash never leaves a
// truncated review file behind.
func (s *Store) ReplaceAll(_ context.Context, records []model.Record) error {
	var b strings.Builder
	b.WriteString(model.HeaderLine())
	b.WriteByte('\n')
	for _, r := range records {
		b.WriteString(r.Serialize())
		b.WriteByte('\n')
	}

	if err := atomic.WriteFile(s.path, strings.NewReader(b.String())); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Append adds records to the end of the set and rewrites the file.
func (s *Store) Append(ctx context.Context, records []model.Record) error {
	existing, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.ReplaceAll(ctx, append(existing, records...))
}

// Update replaces the stored record carrying the same ID.
func (s *Store) Update(ctx context.Context, record model.Record) error {
	records, err := s.Load(ctx)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID == record.ID {
			records[i] = record
			return s.ReplaceAll(ctx, records)
		}
	}
	return fmt.Errorf("record %q not found in %s", record.ID, s.path)
}
