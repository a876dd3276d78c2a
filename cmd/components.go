package cmd

import (
	"photo-curator/internal/catalog"
	"photo-curator/internal/exifmeta"
	"photo-curator/internal/logger"
	"photo-curator/internal/pipeline"
	"photo-curator/internal/process"
	"photo-curator/internal/thumbs"
)

// newImporter opens the catalog and builds the import pipeline.
// The caller closes the returned store.
func (a *app) newImporter() (*pipeline.Importer, catalog.Store, error) {
	s := a.settings
	store, err := catalog.Open(s.Catalog.Driver, s.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	imp := pipeline.New(
		s.MediaRoot,
		exifmeta.NewReader(),
		thumbs.NewGenerator(s.Thumbnail.Quality),
		store,
		pipeline.WithLogger(logger.Module("import")),
		pipeline.WithThumbnailSize(s.Thumbnail.Size),
	)
	return imp, store, nil
}

// newPlanner builds an import pipeline that can only plan: it has no catalog
// and no thumbnailer.
func (a *app) newPlanner() *pipeline.Importer {
	return pipeline.New(
		a.settings.MediaRoot,
		exifmeta.NewReader(),
		nil,
		nil,
		pipeline.WithLogger(logger.Module("import")),
	)
}

func (a *app) newStage() *process.Stage {
	return process.New(a.settings.MediaRoot, logger.Module("process"))
}
