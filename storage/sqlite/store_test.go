package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-entity-manager/query"
	"github.com/goliatone/go-entity-manager/storage"
	"github.com/goliatone/go-entity-manager/storage/sqlite"
)

func newTestStore(t *testing.T, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(":memory:", "books", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedStore(t *testing.T, s *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range []storage.Record{
		{"id": "1", "title": "The Great Gatsby", "year": 1925},
		{"id": "2", "title": "Moby Dick", "year": 1851},
		{"id": "3", "title": "Brave New World", "year": 1932},
	} {
		_, err := s.Create(ctx, rec, storage.CallOptions{})
		require.NoError(t, err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := sqlite.Open("", "books")
	assert.Error(t, err)
}

func TestOpenRejectsBadTableName(t *testing.T) {
	_, err := sqlite.Open(":memory:", "books; DROP TABLE users")
	assert.Error(t, err)
}

func TestOpenFileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.db")
	s, err := sqlite.Open(path, "books")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Create(context.Background(), storage.Record{"id": "1", "title": "x"}, storage.CallOptions{})
	require.NoError(t, err)

	rec, err := s.Get(context.Background(), "1", storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "x", rec["title"])
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, storage.Record{"title": "no id"}, storage.CallOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID("id"), "missing id gets generated")

	got, err := s.Get(ctx, rec.ID("id"), storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "no id", got["title"])

	_, err = s.Get(ctx, "missing", storage.CallOptions{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListFiltersAndPaginates(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	// Stored values round-trip through JSON, so numbers compare as floats.
	out, err := s.List(context.Background(), storage.ListParams{
		Filters: map[string]any{"year": map[string]any{query.OpGT: 1900}},
		SortBy:  "year",
	}, storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "1", out.Items[0].ID("id"))
	assert.Equal(t, "3", out.Items[1].ID("id"))

	page, err := s.List(context.Background(), storage.ListParams{
		SortBy: "id", Page: 2, PageSize: 2,
	}, storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "3", page.Items[0].ID("id"))
}

func TestListSearchRestrictedToFields(t *testing.T) {
	s := newTestStore(t, sqlite.WithSearchFields("title"))
	seedStore(t, s)

	out, err := s.List(context.Background(), storage.ListParams{Search: "moby"}, storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
}

func TestUpdateReplacesRecord(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	rec, err := s.Update(ctx, "1", storage.Record{"title": "Gatsby"}, storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID("id"))
	assert.NotContains(t, rec, "year", "update is wholesale")

	got, err := s.Get(ctx, "1", storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Gatsby", got["title"])

	_, err = s.Update(ctx, "99", storage.Record{"title": "x"}, storage.CallOptions{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPatchMergesFields(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	rec, err := s.Patch(ctx, "1", storage.Record{"year": 1926, "id": "evil"}, storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID("id"), "patch cannot change identity")
	assert.Equal(t, "The Great Gatsby", rec["title"], "untouched fields survive")

	got, err := s.Get(ctx, "1", storage.CallOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1926, got["year"])

	_, err = s.Patch(ctx, "99", storage.Record{}, storage.CallOptions{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "2", storage.CallOptions{}))
	_, err := s.Get(ctx, "2", storage.CallOptions{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "2", storage.CallOptions{}), storage.ErrNotFound)
}

func TestCustomIDField(t *testing.T) {
	s := newTestStore(t, sqlite.WithIDField("uuid"))
	ctx := context.Background()

	rec, err := s.Create(ctx, storage.Record{"uuid": "u1", "title": "x"}, storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.ID("uuid"))

	got, err := s.Get(ctx, "u1", storage.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "x", got["title"])
}
