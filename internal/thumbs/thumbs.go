// Package thumbs generates bounded-box JPEG thumbnails with nfnt/resize.
package thumbs

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"

	"photo-curator/internal/fsx"
)

// Default bounding box and encoding quality.
const (
	DefaultSize    = 300
	DefaultQuality = 85
)

// Generator resizes photos and writes derivatives.
type Generator struct {
	Quality int // JPEG quality 1-100
}

// NewGenerator returns a Generator, falling back to DefaultQuality for out of range values.
func NewGenerator(quality int) Generator {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return Generator{Quality: quality}
}

// Resize decodes path and scales it to fit inside maxWidth x maxHeight,
// keeping the aspect ratio. Images already inside the box are returned as decoded.
func (g Generator) Resize(path string, maxWidth, maxHeight int) (image.Image, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("invalid bounding box %dx%d", maxWidth, maxHeight)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3), nil
}

// WriteAsFile encodes img as JPEG and writes it atomically to dst with mode.
func (g Generator) WriteAsFile(img image.Image, dst string, mode os.FileMode) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: g.quality()}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return fsx.WriteFileAtomic(filepath.Dir(dst), filepath.Base(dst), buf.Bytes(), mode)
}

func (g Generator) quality() int {
	if g.Quality < 1 || g.Quality > 100 {
		return DefaultQuality
	}
	return g.Quality
}
