package paths

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photo-curator/internal/domain"
)

// ListPhotos returns the photos in dir, oldest modification time first.
// Ties are broken by path so the order is stable across runs.
//
// Hidden files and directories are skipped. When recursive is false only the
// direct children of dir are considered. Read errors are returned, not skipped.
func ListPhotos(dir string, recursive bool) ([]domain.File, error) {
	var files []domain.File

	add := func(path string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return err
		}
		f := domain.NewFile(path)
		f.ModTime = info.ModTime()
		files = append(files, f)
		return nil
	}

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || hidden(e.Name()) || !domain.IsPhoto(e.Name()) {
				continue
			}
			if err := add(filepath.Join(dir, e.Name()), e); err != nil {
				return nil, err
			}
		}
	} else {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != dir && hidden(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if hidden(d.Name()) || !domain.IsPhoto(d.Name()) {
				return nil
			}
			return add(path, d)
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.Before(files[j].ModTime)
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
