package pipeline

import (
	"context"
	"fmt"
	"os"

	"photo-curator/internal/domain"
	"photo-curator/internal/paths"
)

// Planned is where a pending photo would end up.
type Planned struct {
	Source      string
	Destination string
	Err         error // why the photo would be quarantined; Destination is then in _failed
}

// Plan reads the metadata of every pending photo and reports where Import
// would move it. Nothing is moved, written or registered.
//
// Only the metadata and destination checks are made; a photo that fails
// later (resize, catalog) still shows its date partition here.
func (i *Importer) Plan(ctx context.Context) ([]Planned, error) {
	files, err := i.Pending()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", i.layout.Import(), err)
	}

	plan := make([]Planned, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return plan, err
		}
		p := Planned{Source: f.Path}
		md, err := i.extract(f.Path)
		if err == nil {
			p.Destination = paths.DestinationForCapture(i.layout.Root, md, f.Name())
			if _, statErr := os.Lstat(p.Destination); statErr == nil && p.Destination != f.Path {
				err = domain.NewError(domain.KindMoveFailed, f.Path,
					fmt.Errorf("%s: %w", p.Destination, os.ErrExist))
			}
		}
		if err != nil {
			p.Err = err
			p.Destination = paths.QuarantinePath(i.layout.Root, f.Name())
		}
		i.log.Debug("planned", "file", f.Path, "dst", p.Destination, "error", err)
		plan = append(plan, p)
	}
	return plan, nil
}
