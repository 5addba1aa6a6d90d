package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "code-review.csv"))
}

func TestLoad_MissingFileIsEmptySet(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReplaceAll_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	want := []model.Record{
		{
			ID: "r1", File: "a.go", Lines: "1:0-2:0", Title: "t1",
			Comment: "body with, comma and \"quotes\"", Priority: model.PriorityHigh,
			Status: model.StatusOpen,
		},
		{
			ID: "r2", File: "b.go", Lines: "5:0-5:0", Title: "t2",
			Comment: "second", Status: model.StatusCheck, IssueID: "#7",
			Assignee: "efisher", Author: "Jane",
		},
	}

	require.NoError(t, store.ReplaceAll(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_LegacyFile(t *testing.T) {
	store := newTestStore(t)
	legacy := strings.Join([]string{
		`"id","commit","file","url","lines","title","comment","priority","category","additional","snippet","private"`,
		`"old-1","abc","main.go","","3:0-3:0","old title","old body","1","","","","0"`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(store.Path(), []byte(legacy), 0o644))

	records, err := store.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "old-1", records[0].ID)
	assert.Equal(t, model.StatusOpen, records[0].Status)
	assert.Equal(t, "", records[0].Assignee)
	assert.Equal(t, "", records[0].IssueID)
	assert.Equal(t, "", records[0].Author)
}

func TestLoad_RejectsForeignHeader(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("\"name\",\"value\"\n"), 0o644))

	_, err := store.Load(context.Background())

	assert.ErrorContains(t, err, "invalid header")
}

func TestAppend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, []model.Record{{ID: "a", Status: model.StatusOpen}}))

	require.NoError(t, store.Append(ctx, []model.Record{{ID: "b", Status: model.StatusOpen}}))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, []model.Record{
		{ID: "a", Status: model.StatusOpen},
		{ID: "b", Status: model.StatusOpen},
	}))

	require.NoError(t, store.Update(ctx, model.Record{ID: "b", Status: model.StatusCheck, IssueID: "#3"}))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, records[0].Status)
	assert.Equal(t, model.StatusCheck, records[1].Status)
	assert.Equal(t, "#3", records[1].IssueID)
}

func TestUpdate_MissingRecord(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.ReplaceAll(context.Background(), nil))

	err := store.Update(context.Background(), model.Record{ID: "ghost"})

	assert.ErrorContains(t, err, "not found")
}

func TestReplaceAll_WritesCanonicalHeader(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.ReplaceAll(context.Background(), nil))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	firstLine, _, _ := strings.Cut(string(data), "\n")
	assert.Equal(t, model.HeaderLine(), firstLine)
}
