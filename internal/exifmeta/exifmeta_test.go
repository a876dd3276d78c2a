package exifmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-curator/internal/domain"
)

// exifJPEG writes a JPEG whose APP1 segment carries IFD0 Orientation and an
// Exif sub-IFD with DateTimeOriginal.
func exifJPEG(t *testing.T, path, taken string, orientation uint16) {
	t.Helper()
	le := binary.LittleEndian
	entry := func(b *bytes.Buffer, tag, typ uint16, count, value uint32) {
		_ = binary.Write(b, le, tag)
		_ = binary.Write(b, le, typ)
		_ = binary.Write(b, le, count)
		_ = binary.Write(b, le, value)
	}

	const ifd0, exifIFD = 8, 38
	date := append([]byte(taken), 0)
	var tif bytes.Buffer
	tif.WriteString("II")
	_ = binary.Write(&tif, le, uint16(42))
	_ = binary.Write(&tif, le, uint32(ifd0))
	_ = binary.Write(&tif, le, uint16(2))
	entry(&tif, 0x0112, 3, 1, uint32(orientation)) // Orientation, SHORT
	entry(&tif, 0x8769, 4, 1, exifIFD)             // Exif IFD pointer, LONG
	_ = binary.Write(&tif, le, uint32(0))
	require.Equal(t, exifIFD, tif.Len())
	_ = binary.Write(&tif, le, uint16(1))
	entry(&tif, 0x9003, 2, uint32(len(date)), uint32(exifIFD+2+12+4)) // DateTimeOriginal, ASCII
	_ = binary.Write(&tif, le, uint32(0))
	tif.Write(date)

	var img bytes.Buffer
	require.NoError(t, jpeg.Encode(&img, image.NewGray(image.Rect(0, 0, 8, 8)), nil))

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(2+6+tif.Len()))
	out.WriteString("Exif\x00\x00")
	out.Write(tif.Bytes())
	out.Write(img.Bytes()[2:]) // the encoded image without its SOI
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
}

func TestRead_GroupsTags(t *testing.T) {
	p := filepath.Join(t.TempDir(), "IMG_0001.jpg")
	exifJPEG(t, p, "2017:03:05 14:22:01", 6)

	tags, err := NewReader().Read(p)
	require.NoError(t, err)

	taken, ok := tags.Get(domain.GroupExif, domain.TagDateTimeOriginal)
	require.True(t, ok, "tags: %v", tags)
	assert.Equal(t, "2017:03:05 14:22:01", taken)
	orient, ok := tags.Get(domain.GroupRoot, domain.TagOrientation)
	require.True(t, ok, "tags: %v", tags)
	assert.Equal(t, "6", orient)

	md, err := domain.ParseMetadata(p, tags)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 3, 5, 14, 22, 1, 0, time.UTC), md.CapturedAt.UTC())
	assert.Equal(t, 6, md.Orientation)

	// Still a decodable image.
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	_, err = jpeg.Decode(f)
	assert.NoError(t, err)
}

func TestRead_NoExif(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plain.jpg")
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewGray(image.Rect(0, 0, 8, 8)), nil))
	require.NoError(t, f.Close())

	tags, err := NewReader().Read(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTags))
	assert.Nil(t, tags)
}

func TestRead_NotAnImage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "junk.jpg")
	require.NoError(t, os.WriteFile(p, []byte("not a jpeg"), 0o644))

	_, err := NewReader().Read(p)
	assert.Error(t, err)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewReader().Read(filepath.Join(t.TempDir(), "gone.jpg"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestGroupOf(t *testing.T) {
	assert.Equal(t, domain.GroupRoot, groupOf(exif.Orientation))
	assert.Equal(t, domain.GroupRoot, groupOf(exif.Model))
	assert.Equal(t, domain.GroupExif, groupOf(exif.DateTimeOriginal))
	assert.Equal(t, domain.GroupExif, groupOf(exif.FNumber))
	assert.Equal(t, domain.GroupGPS, groupOf(exif.GPSLatitude))
}

func TestTagValue_Nil(t *testing.T) {
	_, ok := tagValue(nil)
	assert.False(t, ok)
}
