// Package exifmeta reads embedded photo tags with goexif and groups them the
// way the pipeline expects: tags["Exif"]["DateTimeOriginal"], tags["Root"]["Orientation"].
package exifmeta

import (
	"errors"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"photo-curator/internal/domain"
)

// ErrNoTags is returned when a file carries no readable EXIF block.
var ErrNoTags = errors.New("no exif tags")

// rootFields are the IFD0 fields; everything else except GPS lands in "Exif".
var rootFields = map[exif.FieldName]bool{
	exif.ImageWidth:       true,
	exif.ImageLength:      true,
	exif.Make:             true,
	exif.Model:            true,
	exif.Orientation:      true,
	exif.XResolution:      true,
	exif.YResolution:      true,
	exif.ResolutionUnit:   true,
	exif.Software:         true,
	exif.DateTime:         true,
	exif.Artist:           true,
	exif.Copyright:        true,
	exif.ImageDescription: true,
}

// Reader reads tags from JPEG files.
type Reader struct{}

// NewReader returns a goexif backed Reader.
func NewReader() Reader {
	return Reader{}
}

// Read decodes the EXIF block of path. A file without EXIF yields ErrNoTags.
func (Reader) Read(path string) (domain.Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// goexif reports partially broken blocks as non-critical; keep what was read.
		if x == nil || exif.IsCriticalError(err) {
			return nil, errors.Join(ErrNoTags, err)
		}
	}

	w := &groupWalker{tags: domain.Tags{}}
	if err := x.Walk(w); err != nil {
		return nil, err
	}
	if len(w.tags) == 0 {
		return nil, ErrNoTags
	}
	return w.tags, nil
}

type groupWalker struct {
	tags domain.Tags
}

func (w *groupWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	v, ok := tagValue(tag)
	if !ok {
		return nil
	}
	w.tags.Set(groupOf(name), string(name), v)
	return nil
}

func groupOf(name exif.FieldName) string {
	switch {
	case rootFields[name]:
		return domain.GroupRoot
	case strings.HasPrefix(string(name), "GPS"):
		return domain.GroupGPS
	default:
		return domain.GroupExif
	}
}

// tagValue renders a tag as text. ASCII tags lose their quotes and NUL padding;
// undefined blobs (MakerNote and friends) are skipped.
func tagValue(tag *tiff.Tag) (string, bool) {
	if tag == nil {
		return "", false
	}
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return "", false
		}
		return strings.TrimRight(s, "\x00 "), true
	case tiff.UndefVal, tiff.OtherVal:
		return "", false
	default:
		return tag.String(), true
	}
}
