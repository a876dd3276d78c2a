// Package process handles the awaiting-annotation directory.
//
// Photos dropped into _process are renamed by a human (or the rename command)
// to carry keywords. Once a name looks annotated the photo is promoted to
// _import under the same name.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photo-curator/internal/domain"
	"photo-curator/internal/fsx"
	"photo-curator/internal/keywords"
	"photo-curator/internal/logger"
	"photo-curator/internal/paths"
)

// Stage scans and promotes files for one media root.
type Stage struct {
	layout paths.Layout
	log    *slog.Logger
}

// New returns a Stage for root. A nil logger uses the "process" module logger.
func New(root string, log *slog.Logger) *Stage {
	if log == nil {
		log = logger.Module("process")
	}
	return &Stage{layout: paths.NewLayout(root), log: log}
}

// Partition splits scanned photos by whether their name carries keywords.
// Both slices keep scan order, oldest first.
type Partition struct {
	Annotated   []domain.File
	Unannotated []domain.File
}

// Scan lists photos under _process recursively and partitions them.
func (s *Stage) Scan(ctx context.Context) (Partition, error) {
	var p Partition
	if err := ctx.Err(); err != nil {
		return p, err
	}

	files, err := paths.ListPhotos(s.layout.Process(), true)
	if err != nil {
		return p, fmt.Errorf("scan %s: %w", s.layout.Process(), err)
	}
	for _, f := range files {
		if keywords.HasKeywords(f.Base) {
			p.Annotated = append(p.Annotated, f)
		} else {
			p.Unannotated = append(p.Unannotated, f)
		}
	}
	return p, nil
}

// Promotion reports what MoveProcessedToImport did.
type Promotion struct {
	Promoted []string // new paths under _import
	Failed   []error
	Removed  int // empty directories cleaned up
}

// MoveProcessedToImport moves every annotated photo into _import, keeping its
// name. Nothing is renamed here: a name already taken in _import is a per-file
// failure and the photo stays where it is.
//
// Cancellation is checked between files.
func (s *Stage) MoveProcessedToImport(ctx context.Context) (Promotion, error) {
	var res Promotion

	part, err := s.Scan(ctx)
	if err != nil {
		return res, err
	}

	for _, f := range part.Annotated {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		dst := filepath.Join(s.layout.Import(), f.Name())
		if err := fsx.Move(f.Path, dst); err != nil {
			s.log.Error("promotion failed", "file", f.Path, "error", err)
			res.Failed = append(res.Failed, domain.NewError(domain.KindMoveFailed, f.Path, err))
			continue
		}
		s.log.Info("promoted", "file", f.Path, "dst", dst)
		res.Promoted = append(res.Promoted, dst)
	}

	if len(res.Promoted) > 0 {
		n, err := s.CleanupEmptyDirs()
		if err != nil {
			s.log.Warn("cleanup failed", "error", err)
		}
		res.Removed = n
	}
	return res, nil
}

// PlanPromotion reports what MoveProcessedToImport would do without moving
// anything. Promoted holds the would-be paths under _import, Failed the photos
// whose name is already taken there. Removed is always zero.
func (s *Stage) PlanPromotion(ctx context.Context) (Promotion, error) {
	var res Promotion

	part, err := s.Scan(ctx)
	if err != nil {
		return res, err
	}
	for _, f := range part.Annotated {
		dst := filepath.Join(s.layout.Import(), f.Name())
		if _, err := os.Lstat(dst); err == nil {
			res.Failed = append(res.Failed, domain.NewError(domain.KindMoveFailed, f.Path,
				fmt.Errorf("%s: %w", dst, os.ErrExist)))
			continue
		}
		res.Promoted = append(res.Promoted, dst)
	}
	return res, nil
}

// Annotate renames path, which must be under _process, to the first free
// "<keywords>-<n>.<ext>" name in its directory. It returns the new path.
func (s *Stage) Annotate(path string, kws []string) (string, error) {
	f := domain.NewFile(path)
	if err := paths.CheckUnder(s.layout.Process(), f.Path); err != nil {
		return "", err
	}
	if !domain.IsPhoto(f.Name()) {
		return "", fmt.Errorf("%s is not a recognized photo", f.Path)
	}
	for _, kw := range kws {
		if strings.ContainsAny(kw, `/\`) || strings.Contains(kw, "..") {
			return "", fmt.Errorf("keyword %q must not contain a path separator or \"..\"", kw)
		}
	}
	if len(keywords.FromName(keywords.ToName(kws))) == 0 {
		return "", fmt.Errorf("no usable keywords in %q", kws)
	}

	name, err := keywords.ResolveName(f.Dir, kws, f.Ext)
	if err != nil {
		return "", err
	}
	// The new name stays a plain, visible file in the same directory.
	if filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("keywords %q do not form a file name", kws)
	}
	dst := filepath.Join(f.Dir, name)
	if err := fsx.Move(f.Path, dst); err != nil {
		return "", err
	}
	s.log.Info("annotated", "file", f.Path, "dst", dst)
	return dst, nil
}

// CleanupEmptyDirs removes sub-directories of _process that hold no visible
// files. Hidden files such as .DS_Store do not keep a directory alive.
// The _process directory itself is kept.
func (s *Stage) CleanupEmptyDirs() (int, error) {
	root := s.layout.Process()
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Deepest first so a parent emptied by its children goes too.
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, err
		}
		visible := 0
		for _, e := range entries {
			if !strings.HasPrefix(e.Name(), ".") {
				visible++
			}
		}
		if visible > 0 {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		s.log.Info("cleaned up empty folders", "count", removed)
	}
	return removed, nil
}
