package paths

import (
	"fmt"
	"os"

	"photo-curator/internal/fsx"
)

// ManagedDir describes one of the directories the library needs.
type ManagedDir struct {
	Path string
	Desc string
}

// Dirs lists the managed directories in creation order.
func (l Layout) Dirs() []ManagedDir {
	return []ManagedDir{
		{l.Process(), "Drop new photos here for keyword annotation"},
		{l.Import(), "Annotated photos waiting for import"},
		{l.Quarantine(), "Photos whose import failed"},
		{l.Thumbs(), "Generated thumbnails"},
	}
}

// InitResult reports which managed directories were created or already present.
type InitResult struct {
	Created []ManagedDir
	Skipped []ManagedDir
}

// Init creates the managed directory structure under the media root.
// Existing directories are left alone.
func (l Layout) Init() (InitResult, error) {
	var res InitResult
	for _, d := range l.Dirs() {
		if fi, err := os.Stat(d.Path); err == nil && fi.IsDir() {
			res.Skipped = append(res.Skipped, d)
			continue
		}
		if err := fsx.EnsureDir(d.Path); err != nil {
			return res, fmt.Errorf("failed to create %s: %w", d.Path, err)
		}
		res.Created = append(res.Created, d)
	}
	return res, nil
}
