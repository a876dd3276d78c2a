// Package pipeline moves one photo at a time from the import staging
// directory into its date partition.
//
// Each file runs through:
//
//	Pending -> MetadataExtracted -> Moved -> ThumbnailCreated -> Registered
//
// Any failure on the way sends the file, under its original name, to the
// quarantine directory. There is no ledger of in-flight files: a file that was
// interrupted is found again wherever it physically lies.
package pipeline

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"photo-curator/internal/domain"
	"photo-curator/internal/fsx"
	"photo-curator/internal/keywords"
	"photo-curator/internal/logger"
	"photo-curator/internal/paths"
	"photo-curator/internal/thumbs"
)

// MetadataReader extracts embedded tags from a photo.
type MetadataReader interface {
	Read(path string) (domain.Tags, error)
}

// Thumbnailer produces the derivative image.
type Thumbnailer interface {
	Resize(path string, maxWidth, maxHeight int) (image.Image, error)
	WriteAsFile(img image.Image, dst string, mode os.FileMode) error
}

// Catalog receives registered photos. Upsert must be idempotent.
type Catalog interface {
	Upsert(ctx context.Context, rec domain.CatalogRecord) error
}

// ThumbnailMode is the file mode of written thumbnails.
const ThumbnailMode os.FileMode = 0o644

// fingerprintBytes is how much of a file the fingerprint covers.
const fingerprintBytes = 64 * 1024

// Importer runs the import state machine for files under one media root.
type Importer struct {
	layout    paths.Layout
	meta      MetadataReader
	thumbs    Thumbnailer
	catalog   Catalog
	thumbSize int
	log       *slog.Logger
	now       func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. Defaults to the "import" module logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.log = l
		}
	}
}

// WithThumbnailSize sets the side of the square bounding box.
func WithThumbnailSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.thumbSize = n
		}
	}
}

// WithClock overrides the time source for ImportedAt.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// New returns an Importer for root.
func New(root string, meta MetadataReader, th Thumbnailer, cat Catalog, opts ...Option) *Importer {
	i := &Importer{
		layout:    paths.NewLayout(root),
		meta:      meta,
		thumbs:    th,
		catalog:   cat,
		thumbSize: thumbs.DefaultSize,
		log:       logger.Module("import"),
		now:       time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Layout returns the library layout the Importer works on.
func (i *Importer) Layout() paths.Layout { return i.layout }

// run tracks one file through the machine.
type run struct {
	file      domain.File
	current   string // where the file physically is now
	state     State
	thumbnail string // set once a thumbnail has been written
}

// Import runs one file through the pipeline.
//
// Failures inside the pipeline are reported in the Outcome, never as an error.
// The error is non-nil only when the file could not be quarantined, in which
// case it is left wherever it currently is.
//
// Once started, a file runs to a terminal state even if ctx is cancelled, so a
// restart never finds it half-moved.
func (i *Importer) Import(ctx context.Context, path string) (Outcome, error) {
	ctx = context.WithoutCancel(ctx)
	r := &run{file: domain.NewFile(path), state: Pending}
	r.current = r.file.Path
	root := i.layout.Root
	log := i.log.With("file", r.file.Path)

	// Pending -> MetadataExtracted
	md, err := i.extract(r.file.Path)
	if err != nil {
		return i.quarantine(r, err)
	}
	r.state = MetadataExtracted
	log.Debug("metadata extracted", "captured_at", md.CapturedAt, "orientation", md.Orientation)

	// MetadataExtracted -> Moved
	dst := paths.DestinationForCapture(root, md, r.file.Name())
	if err := fsx.Move(r.current, dst); err != nil {
		return i.quarantine(r, domain.NewError(domain.KindMoveFailed, r.current, err))
	}
	r.current = dst
	r.state = Moved
	log.Debug("moved", "dst", dst)

	// Moved -> ThumbnailCreated
	thumb, err := paths.ThumbnailMirror(root, dst)
	if err != nil {
		return i.quarantine(r, err)
	}
	if err := i.writeThumbnail(r, thumb); err != nil {
		return i.quarantine(r, err)
	}
	r.state = ThumbnailCreated
	log.Debug("thumbnail created", "thumbnail", thumb)

	// ThumbnailCreated -> Registered
	rec, err := i.record(r, md)
	if err != nil {
		return i.quarantine(r, err)
	}
	if err := i.catalog.Upsert(ctx, rec); err != nil {
		return i.quarantine(r, domain.NewError(domain.KindCatalogWriteFailed, dst, err))
	}
	r.state = Registered
	log.Info("imported", "dst", dst, "category", rec.Category, "keywords", rec.Keywords)

	return Outcome{Source: r.file.Path, State: Registered, Record: rec}, nil
}

func (i *Importer) extract(path string) (domain.Metadata, error) {
	tags, err := i.meta.Read(path)
	if err != nil {
		return domain.Metadata{}, domain.NewError(domain.KindMetadataUnreadable, path, err)
	}
	return domain.ParseMetadata(path, tags)
}

func (i *Importer) writeThumbnail(r *run, thumb string) error {
	if err := paths.EnsureParent(thumb); err != nil {
		return domain.NewError(domain.KindResizeFailed, r.current, err)
	}
	img, err := i.thumbs.Resize(r.current, i.thumbSize, i.thumbSize)
	if err != nil {
		return domain.NewError(domain.KindResizeFailed, r.current, err)
	}
	if err := i.thumbs.WriteAsFile(img, thumb, ThumbnailMode); err != nil {
		return domain.NewError(domain.KindResizeFailed, r.current, err)
	}
	r.thumbnail = thumb
	return nil
}

func (i *Importer) record(r *run, md domain.Metadata) (domain.CatalogRecord, error) {
	cat, err := paths.CategoryOf(i.layout.Root, filepath.Dir(r.current))
	if err != nil {
		return domain.CatalogRecord{}, domain.NewError(domain.KindCatalogWriteFailed, r.current, err)
	}

	rec := domain.CatalogRecord{
		Path:        r.current,
		Category:    cat.String(),
		Name:        r.file.Name(),
		Base:        r.file.Base,
		Keywords:    keywords.FromName(r.file.Base),
		CapturedAt:  md.CapturedAt,
		Orientation: md.Orientation,
		Thumbnail:   r.thumbnail,
		ImportedAt:  i.now(),
	}

	// Size and fingerprint are informational; a failure here does not fail the import.
	if fp, size, err := fingerprint(r.current); err != nil {
		i.log.Warn("fingerprint failed", "file", r.current, "error", err)
	} else {
		rec.Fingerprint, rec.Size = fp, size
	}
	return rec, nil
}

// quarantine moves the file to the quarantine directory and reports the failure.
func (i *Importer) quarantine(r *run, cause error) (Outcome, error) {
	kind := domain.KindOf(cause)
	i.log.Error("import failed",
		"file", r.file.Path,
		"state", r.state.String(),
		"kind", string(kind),
		"error", cause)

	if r.thumbnail != "" {
		if err := os.Remove(r.thumbnail); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.log.Warn("failed to remove thumbnail", "thumbnail", r.thumbnail, "error", err)
		}
	}

	out := Outcome{
		Source:   r.file.Path,
		State:    r.state,
		FailedIn: r.state,
		Err:      cause,
	}

	dst := paths.QuarantinePath(i.layout.Root, r.file.Name())
	if err := fsx.Move(r.current, dst); err != nil {
		return out, fmt.Errorf("quarantine %s: %w", r.current, err)
	}

	out.State = Quarantined
	out.QuarantinedAt = dst
	i.log.Warn("quarantined", "file", r.file.Path, "dst", dst)
	return out, nil
}

// fingerprint returns the MD5 of the first 64KB of path and its size.
func fingerprint(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", 0, err
	}

	h := md5.New()
	if _, err := io.Copy(h, io.LimitReader(f, fingerprintBytes)); err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), fi.Size(), nil
}
