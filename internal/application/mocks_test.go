package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

type stubSource struct {
	sessions []model.ReviewSession
	err      error
	calls    int
}

var _ driven.ReviewSource = (*stubSource)(nil)

func (s *stubSource) Sessions(ctx context.Context) ([]model.ReviewSession, error) {
	s.calls++
	return s.sessions, s.err
}

type memStore struct {
	records      []model.Record
	loadErr      error
	replaceErr   error
	updateErr    map[string]error
	replaceCalls int
	updateCalls  int
}

var _ driven.RecordStore = (*memStore)(nil)

func (m *memStore) Load(ctx context.Context) ([]model.Record, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]model.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memStore) ReplaceAll(ctx context.Context, records []model.Record) error {
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.records = append([]model.Record(nil), records...)
	return nil
}

func (m *memStore) Append(ctx context.Context, records []model.Record) error {
	m.records = append(m.records, records...)
	return nil
}

func (m *memStore) Update(ctx context.Context, record model.Record) error {
	m.updateCalls++
	if err := m.updateErr[record.ID]; err != nil {
		return err
	}
	for i := range m.records {
		if m.records[i].ID == record.ID {
			m.records[i] = record
			return nil
		}
	}
	return fmt.Errorf("record %s not found", record.ID)
}

func (m *memStore) Path() string { return "code-review.csv" }

func (m *memStore) byID(id string) (model.Record, bool) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return model.Record{}, false
}

type stubResolver struct {
	revision   string
	author     string
	batch      map[int]model.Attribution
	batchErr   error
	batchCalls int
	lineCalls  int
}

var _ driven.AttributionResolver = (*stubResolver)(nil)

func (r *stubResolver) CurrentRevision(ctx context.Context, workspaceRoot string) string {
	return r.revision
}

func (r *stubResolver) RevisionForLine(ctx context.Context, workspaceRoot, file string, line int) string {
	r.lineCalls++
	return r.revision
}

func (r *stubResolver) AuthorForLine(ctx context.Context, workspaceRoot, file string, line int) string {
	r.lineCalls++
	return r.author
}

func (r *stubResolver) BatchAttribution(ctx context.Context, workspaceRoot, file string, lines []int) (map[int]model.Attribution, error) {
	r.batchCalls++
	if r.batchErr != nil {
		return nil, r.batchErr
	}
	return r.batch, nil
}

func (r *stubResolver) InvalidateLines()    {}
func (r *stubResolver) InvalidateRevision() {}

type stubTracker struct {
	validateErr error
	createErr   map[string]error // keyed by issue title
	nextNumber  int
	created     []model.NewIssue
	issues      map[int]model.Issue
	lookupErr   error
	lookups     [][]int
	users       []model.UserRef
	searchErr   error
	batchSize   int
}

var _ driven.TrackerClient = (*stubTracker)(nil)

func (t *stubTracker) Validate(ctx context.Context) error { return t.validateErr }

func (t *stubTracker) CreateIssue(ctx context.Context, issue model.NewIssue) (model.Issue, error) {
	if err := t.createErr[issue.Title]; err != nil {
		return model.Issue{}, err
	}
	t.nextNumber++
	t.created = append(t.created, issue)
	return model.Issue{
		ID:     int64(t.nextNumber),
		Number: t.nextNumber,
		State:  model.IssueStateOpen,
		WebURL: fmt.Sprintf("https://tracker.example/issues/%d", t.nextNumber),
	}, nil
}

func (t *stubTracker) GetIssuesByNumbers(ctx context.Context, numbers []int) (map[int]model.Issue, error) {
	t.lookups = append(t.lookups, append([]int(nil), numbers...))
	if t.lookupErr != nil {
		return nil, t.lookupErr
	}
	out := make(map[int]model.Issue, len(numbers))
	for _, n := range numbers {
		if issue, ok := t.issues[n]; ok {
			out[n] = issue
		}
	}
	return out, nil
}

func (t *stubTracker) SearchUsers(ctx context.Context, query string) ([]model.UserRef, error) {
	if t.searchErr != nil {
		return nil, t.searchErr
	}
	return t.users, nil
}

func (t *stubTracker) MaxBatchSize() int {
	if t.batchSize > 0 {
		return t.batchSize
	}
	return 100
}
