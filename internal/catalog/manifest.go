package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"photo-curator/internal/domain"
	"photo-curator/internal/fsx"
)

const manifestTimeLayout = "2006-01-02 15:04:05"

// manifestHeaders are the CSV columns, in order.
var manifestHeaders = []string{
	"path",            // Canonical absolute path (key)
	"category",        // Date partition, e.g. 2017/3/14
	"filename",        // File name with extension
	"base",            // File name without extension
	"keywords",        // JSON array of keyword tokens
	"capture_date",    // EXIF DateTimeOriginal
	"orientation",     // EXIF orientation, 0 when absent
	"thumbnail",       // Thumbnail path
	"file_size_bytes", // Size in bytes
	"file_hash",       // MD5 of first 64KB
	"imported_date",   // When the photo was imported
}

// Manifest is a catalog kept as a single CSV file, rewritten on every upsert.
// Rows are sorted by path for stable diffs.
type Manifest struct {
	Path string

	mu sync.Mutex
}

// NewManifest returns a Manifest stored at path.
func NewManifest(path string) *Manifest {
	return &Manifest{Path: filepath.Clean(path)}
}

// Upsert adds rec or replaces the row with the same path.
func (m *Manifest) Upsert(ctx context.Context, rec domain.CatalogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.load()
	if err != nil {
		return err
	}
	row, err := recordToRow(rec)
	if err != nil {
		return err
	}
	rows[row[0]] = row
	return m.store(rows)
}

// Get returns the row stored under path.
func (m *Manifest) Get(ctx context.Context, path string) (domain.CatalogRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogRecord{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.load()
	if err != nil {
		return domain.CatalogRecord{}, false, err
	}
	row, ok := rows[canonical(path)]
	if !ok {
		return domain.CatalogRecord{}, false, nil
	}
	rec, err := rowToRecord(row)
	return rec, err == nil, err
}

// Close is a no-op; every upsert is already on disk.
func (m *Manifest) Close() error { return nil }

// load reads existing rows keyed by path. A missing file is an empty manifest.
func (m *Manifest) load() (map[string][]string, error) {
	rows := make(map[string][]string)

	f, err := os.Open(m.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return rows, nil
		}
		return nil, err
	}
	defer f.Close()

	// Every row must have every column. A short row is an error rather
	// than skipped, or the next store would erase it.
	r := csv.NewReader(f)
	r.FieldsPerRecord = len(manifestHeaders)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", m.Path, err)
	}
	if len(records) == 0 {
		return rows, nil
	}
	for _, row := range records[1:] {
		rows[row[0]] = row
	}
	return rows, nil
}

// store rewrites the manifest atomically.
func (m *Manifest) store(rows map[string][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(manifestHeaders); err != nil {
		return err
	}

	paths := make([]string, 0, len(rows))
	for p := range rows {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := w.Write(rows[p]); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Dir(m.Path), filepath.Base(m.Path), buf.Bytes(), 0o644)
}

func recordToRow(rec domain.CatalogRecord) ([]string, error) {
	kws, err := encodeKeywords(rec.Keywords)
	if err != nil {
		return nil, err
	}
	return []string{
		canonical(rec.Path),
		rec.Category,
		rec.Name,
		rec.Base,
		kws,
		formatTime(rec.CapturedAt, domain.CaptureLayout),
		strconv.Itoa(rec.Orientation),
		rec.Thumbnail,
		strconv.FormatInt(rec.Size, 10),
		rec.Fingerprint,
		formatTime(rec.ImportedAt, manifestTimeLayout),
	}, nil
}

func rowToRecord(row []string) (domain.CatalogRecord, error) {
	rec := domain.CatalogRecord{
		Path:        row[0],
		Category:    row[1],
		Name:        row[2],
		Base:        row[3],
		Keywords:    []string{},
		Thumbnail:   row[7],
		Fingerprint: row[9],
	}
	var err error
	if rec.Keywords, err = decodeKeywords(row[4]); err != nil {
		return rec, fmt.Errorf("keywords: %w", err)
	}
	if rec.CapturedAt, err = parseTime(row[5], domain.CaptureLayout); err != nil {
		return rec, fmt.Errorf("capture_date: %w", err)
	}
	if rec.Orientation, err = strconv.Atoi(row[6]); err != nil {
		return rec, fmt.Errorf("orientation: %w", err)
	}
	if rec.Size, err = strconv.ParseInt(row[8], 10, 64); err != nil {
		return rec, fmt.Errorf("file_size_bytes: %w", err)
	}
	if rec.ImportedAt, err = parseTime(row[10], manifestTimeLayout); err != nil {
		return rec, fmt.Errorf("imported_date: %w", err)
	}
	return rec, nil
}

// encodeKeywords stores keywords as a JSON array, like the SQLite store.
// An empty list is an empty cell.
func encodeKeywords(kws []string) (string, error) {
	if len(kws) == 0 {
		return "", nil
	}
	b, err := json.Marshal(kws)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeKeywords(s string) ([]string, error) {
	kws := []string{}
	if s == "" {
		return kws, nil
	}
	if err := json.Unmarshal([]byte(s), &kws); err != nil {
		return nil, err
	}
	return kws, nil
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}

func parseTime(s, layout string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(layout, s, time.UTC)
}
