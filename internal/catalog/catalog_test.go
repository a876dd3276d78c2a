package catalog

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-curator/internal/domain"
)

func sampleRecord(root string) domain.CatalogRecord {
	return domain.CatalogRecord{
		Path:        filepath.Join(root, "2017", "3", "14", "beach-1.jpg"),
		Category:    "2017/3/14",
		Name:        "beach-1.jpg",
		Base:        "beach-1",
		Keywords:    []string{"beach"},
		CapturedAt:  time.Date(2017, 3, 14, 9, 26, 53, 0, time.UTC),
		Orientation: 6,
		Thumbnail:   filepath.Join(root, "_thumbs", "2017", "3", "14", "beach-1.jpg"),
		Size:        2048,
		Fingerprint: "d41d8cd98f00b204e9800998ecf8427e",
		ImportedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func assertSameRecord(t *testing.T, want, got domain.CatalogRecord) {
	t.Helper()
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, want.Category, got.Category)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Base, got.Base)
	assert.Equal(t, want.Keywords, got.Keywords)
	assert.True(t, want.CapturedAt.Equal(got.CapturedAt), "captured %v != %v", want.CapturedAt, got.CapturedAt)
	assert.Equal(t, want.Orientation, got.Orientation)
	assert.Equal(t, want.Thumbnail, got.Thumbnail)
	assert.Equal(t, want.Size, got.Size)
	assert.Equal(t, want.Fingerprint, got.Fingerprint)
	assert.True(t, want.ImportedAt.Equal(got.ImportedAt), "imported %v != %v", want.ImportedAt, got.ImportedAt)
}

func TestSQLite_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenSQLite(filepath.Join(dir, "_catalog", "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	rec := sampleRecord(dir)
	require.NoError(t, s.Upsert(ctx, rec))
	require.NoError(t, s.Upsert(ctx, rec))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, ok, err := s.Get(ctx, rec.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameRecord(t, rec, got)
}

func TestSQLite_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenSQLite(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	rec := sampleRecord(dir)
	require.NoError(t, s.Upsert(ctx, rec))

	rec.Keywords = []string{"beach", "sunset"}
	rec.Size = 4096
	require.NoError(t, s.Upsert(ctx, rec))

	got, ok, err := s.Get(ctx, rec.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"beach", "sunset"}, got.Keywords)
	assert.Equal(t, int64(4096), got.Size)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLite_GetMissing(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok, err := s.Get(context.Background(), "/nowhere.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_KeyIsCleanPath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenSQLite(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	rec := sampleRecord(dir)
	require.NoError(t, s.Upsert(ctx, rec))

	_, ok, err := s.Get(ctx, filepath.Join(dir, "2017", "3", ".", "14", "beach-1.jpg"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManifest_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewManifest(filepath.Join(dir, "_catalog", "manifest.csv"))

	rec := sampleRecord(dir)
	require.NoError(t, m.Upsert(ctx, rec))
	require.NoError(t, m.Upsert(ctx, rec))

	got, ok, err := m.Get(ctx, rec.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameRecord(t, rec, got)

	data, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2, "header plus one row")
	assert.True(t, strings.HasPrefix(lines[0], "path,category,filename"))
}

func TestManifest_RowsSortedByPath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewManifest(filepath.Join(dir, "manifest.csv"))

	b := sampleRecord(dir)
	b.Path = filepath.Join(dir, "b.jpg")
	a := sampleRecord(dir)
	a.Path = filepath.Join(dir, "a.jpg")
	a.Keywords = nil

	require.NoError(t, m.Upsert(ctx, b))
	require.NoError(t, m.Upsert(ctx, a))

	data, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], a.Path))
	assert.True(t, strings.HasPrefix(lines[2], b.Path))

	got, ok, err := m.Get(ctx, a.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got.Keywords)
}

func TestManifest_KeywordsWithSeparators(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewManifest(filepath.Join(dir, "manifest.csv"))

	rec := sampleRecord(dir)
	rec.Keywords = []string{"fish;chips", "new york", `say "hi"`}
	require.NoError(t, m.Upsert(ctx, rec))

	got, ok, err := m.Get(ctx, rec.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.Keywords, got.Keywords)
}

func TestManifest_MalformedRowIsAnError(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewManifest(filepath.Join(dir, "manifest.csv"))

	require.NoError(t, m.Upsert(ctx, sampleRecord(dir)))
	// A hand-edited row with a missing column.
	f, err := os.OpenFile(m.Path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("/other.jpg,2017/3/14,other.jpg\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	before, err := os.ReadFile(m.Path)
	require.NoError(t, err)

	other := sampleRecord(dir)
	other.Path = filepath.Join(dir, "2017", "3", "14", "other-1.jpg")
	err = m.Upsert(ctx, other)
	assert.ErrorIs(t, err, csv.ErrFieldCount)

	after, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "manifest left untouched")
}

func TestManifest_GetMissingFile(t *testing.T) {
	m := NewManifest(filepath.Join(t.TempDir(), "none.csv"))
	_, ok, err := m.Get(context.Background(), "/x.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, m.Close())
}

func TestManifest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewManifest(filepath.Join(t.TempDir(), "m.csv"))
	assert.ErrorIs(t, m.Upsert(ctx, sampleRecord("/root")), context.Canceled)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("csv", filepath.Join(dir, "m.csv"))
	require.NoError(t, err)
	assert.IsType(t, &Manifest{}, s)

	s, err = Open(" SQLite ", filepath.Join(dir, "c.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", "x")
	assert.Error(t, err)
}
