// Package driven declares the interfaces the application core requires
// from its collaborators. Adapters implement these; the core never
// imports adapter packages.
package driven

import (
	"context"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

// RecordStore persists the ordered record set backing one review file.
// Writes replace the whole file atomically; there are no partial
// updates.
type RecordStore interface {
	// Load returns the full record set in file order. A missing file
	// reads as an empty set, not an error.
	Load(ctx context.Context) ([]model.Record, error)
	// ReplaceAll rewrites the complete record set.
	ReplaceAll(ctx context.Context, records []model.Record) error
	// Append adds records to the end of the set.
	Append(ctx context.Context, records []model.Record) error
	// Update replaces the stored record with the same ID. It fails if
	// no such record exists.
	Update(ctx context.Context, record model.Record) error
	// Path returns the backing file path, for logging and reporting.
	Path() string
}
