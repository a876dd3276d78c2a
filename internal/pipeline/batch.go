package pipeline

import (
	"context"
	"fmt"
	"time"

	"photo-curator/internal/domain"
	"photo-curator/internal/paths"
)

// Batch collects the outcomes of one pass over the import directory.
type Batch struct {
	Outcomes []Outcome
	Started  time.Time
	Duration time.Duration
}

// Imported returns the records of registered files, in processing order.
func (b Batch) Imported() []domain.CatalogRecord {
	var out []domain.CatalogRecord
	for _, o := range b.Outcomes {
		if o.OK() {
			out = append(out, o.Record)
		}
	}
	return out
}

// Failed returns the outcomes of quarantined files.
func (b Batch) Failed() []Outcome {
	var out []Outcome
	for _, o := range b.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Pending lists the photos waiting in the import directory, oldest first.
func (i *Importer) Pending() ([]domain.File, error) {
	return paths.ListPhotos(i.layout.Import(), false)
}

// ImportPending runs Import over every pending photo.
//
// A failing file never stops the batch. The batch stops early when ctx is
// cancelled between two files, or when a file cannot be quarantined; the
// outcomes collected so far are returned with the error either way.
func (i *Importer) ImportPending(ctx context.Context) (Batch, error) {
	b := Batch{Started: time.Now()}

	files, err := i.Pending()
	if err != nil {
		return b, fmt.Errorf("scan %s: %w", i.layout.Import(), err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			b.Duration = time.Since(b.Started)
			return b, err
		}
		out, err := i.Import(ctx, f.Path)
		b.Outcomes = append(b.Outcomes, out)
		if err != nil {
			b.Duration = time.Since(b.Started)
			return b, err
		}
	}

	b.Duration = time.Since(b.Started)
	i.log.Info("batch finished",
		"pending", len(files),
		"imported", len(b.Imported()),
		"failed", len(b.Failed()),
		"duration", b.Duration)
	return b, nil
}
