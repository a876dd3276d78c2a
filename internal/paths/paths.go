// Package paths computes where files live in the managed photo library.
//
// Library layout under a media root:
//
//	<root>/
//	├── _import/     <- annotated photos waiting for import
//	├── _process/    <- photos waiting for keyword annotation
//	├── _failed/     <- quarantine for photos whose import errored
//	├── _thumbs/     <- thumbnail tree mirroring <root>
//	└── 2017/3/14/   <- date partitions, no zero padding
package paths

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"photo-curator/internal/domain"
	"photo-curator/internal/fsx"
)

// Managed directory names under the media root.
const (
	ImportDir     = "_import"
	ProcessDir    = "_process"
	QuarantineDir = "_failed"
	ThumbsDir     = "_thumbs"
)

// Layout resolves managed directories for one media root.
type Layout struct {
	Root string
}

// NewLayout returns a Layout for root, cleaned.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// Import returns the import staging directory.
func (l Layout) Import() string { return filepath.Join(l.Root, ImportDir) }

// Process returns the awaiting-annotation directory.
func (l Layout) Process() string { return filepath.Join(l.Root, ProcessDir) }

// Quarantine returns the quarantine directory.
func (l Layout) Quarantine() string { return filepath.Join(l.Root, QuarantineDir) }

// Thumbs returns the root of the thumbnail mirror tree.
func (l Layout) Thumbs() string { return filepath.Join(l.Root, ThumbsDir) }

// DestinationForCapture returns root/year/month/day/name for the capture time.
// Segments are rendered without zero padding ("3", not "03").
func DestinationForCapture(root string, md domain.Metadata, name string) string {
	t := md.CapturedAt
	return filepath.Join(
		filepath.Clean(root),
		strconv.Itoa(t.Year()),
		strconv.Itoa(int(t.Month())),
		strconv.Itoa(t.Day()),
		name,
	)
}

// ThumbnailMirror maps a path under root to the same relative path under
// root/_thumbs. A path outside root fails with PathNotUnderRoot.
func ThumbnailMirror(root, path string) (string, error) {
	rel, err := relUnder(root, path)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Clean(root), ThumbsDir, rel), nil
}

// QuarantinePath returns root/_failed/name.
func QuarantinePath(root, name string) string {
	return filepath.Join(filepath.Clean(root), QuarantineDir, name)
}

// CategoryOf parses the category of a directory under root, e.g. root/2017/3/5 -> 2017/3/5.
func CategoryOf(root, dir string) (domain.Category, error) {
	rel, err := relUnder(root, dir)
	if err != nil {
		return nil, err
	}
	return domain.ParseCategory(filepath.ToSlash(rel))
}

// CheckUnder fails with PathNotUnderRoot unless path sits strictly below root.
func CheckUnder(root, path string) error {
	_, err := relUnder(root, path)
	return err
}

// EnsureParent creates the parent directory of path if needed.
func EnsureParent(path string) error {
	return fsx.EnsureDir(filepath.Dir(path))
}

// relUnder returns path relative to root, requiring path to sit strictly
// below root on a separator boundary.
func relUnder(root, path string) (string, error) {
	root = filepath.Clean(root)
	path = filepath.Clean(path)

	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(path, prefix) {
		return "", domain.NewError(domain.KindPathNotUnderRoot, path, fmt.Errorf("not under %q", root))
	}
	return strings.TrimPrefix(path, prefix), nil
}
