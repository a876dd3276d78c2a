// Package watch drives the import pipeline on a fixed poll interval.
//
// Iterations never overlap: a batch runs to completion (or to a cancellation
// point between files) before the loop sleeps again. Only one Loop may run
// against a media root at a time; this is not enforced here.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"photo-curator/internal/domain"
	"photo-curator/internal/logger"
	"photo-curator/internal/pipeline"
	"photo-curator/internal/process"
)

// DefaultInterval is the sleep between batches.
const DefaultInterval = 5 * time.Minute

// Importer runs import batches.
type Importer interface {
	ImportPending(ctx context.Context) (pipeline.Batch, error)
	Pending() ([]domain.File, error)
}

// Promoter moves annotated photos into the import directory.
type Promoter interface {
	MoveProcessedToImport(ctx context.Context) (process.Promotion, error)
}

// Recorder receives batch statistics. *metrics.PipelineMetrics implements it.
type Recorder interface {
	RecordBatch(b pipeline.Batch)
	RecordPromotions(n int)
	SetPending(n int)
}

// Observer is told about every batch that imported at least one photo.
type Observer interface {
	OnImported(batchID string, records []domain.CatalogRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(batchID string, records []domain.CatalogRecord)

func (f ObserverFunc) OnImported(batchID string, records []domain.CatalogRecord) {
	f(batchID, records)
}

// Loop polls the import directory.
type Loop struct {
	Importer Importer
	Promoter Promoter // optional; runs before each import batch
	Interval time.Duration
	Observer Observer // optional
	Metrics  Recorder // optional
	Log      *slog.Logger
}

// New returns a Loop with the default interval.
func New(imp Importer) *Loop {
	return &Loop{Importer: imp, Interval: DefaultInterval}
}

// Run executes batches until ctx is cancelled. A batch error is logged and the
// loop carries on with the next iteration. Run returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if l.Importer == nil {
		return errors.New("watch: no importer")
	}
	log := l.logger()
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Info("watching", "interval", interval, "promote", l.Promoter != nil)

	for {
		if ctx.Err() != nil {
			log.Info("stopped")
			return nil
		}

		if _, err := l.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("batch failed", "error", err)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce runs a single iteration: optional promotion, then one import batch.
func (l *Loop) RunOnce(ctx context.Context) (pipeline.Batch, error) {
	id := uuid.NewString()
	log := l.logger().With("batch", id)

	if l.Promoter != nil {
		res, err := l.Promoter.MoveProcessedToImport(ctx)
		if err != nil {
			log.Error("promotion failed", "error", err)
		}
		if l.Metrics != nil {
			l.Metrics.RecordPromotions(len(res.Promoted))
		}
		if len(res.Promoted) > 0 {
			log.Info("promoted photos", "count", len(res.Promoted), "failed", len(res.Failed))
		}
	}

	b, err := l.Importer.ImportPending(ctx)
	if l.Metrics != nil {
		l.Metrics.RecordBatch(b)
		if left, perr := l.Importer.Pending(); perr == nil {
			l.Metrics.SetPending(len(left))
		}
	}

	if imported := b.Imported(); len(imported) > 0 {
		log.Info("imported photos", "count", len(imported), "files", names(imported))
		if l.Observer != nil {
			l.Observer.OnImported(id, imported)
		}
	} else {
		log.Debug("nothing imported", "failed", len(b.Failed()))
	}
	return b, err
}

func (l *Loop) logger() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return logger.Module("watch")
}

func names(recs []domain.CatalogRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Path
	}
	return out
}
