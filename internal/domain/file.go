// Package domain holds the types shared by every stage of the photo pipeline.
//
// Nothing in this package touches the disk. A File is a transient handle that
// is rebuilt on every scan; the file system stays the source of truth.
package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// File is a reference to a photo inside the managed tree.
type File struct {
	Path    string    // Absolute, cleaned path
	Base    string    // File name without extension
	Ext     string    // Extension including the dot, case preserved (".JPG")
	Dir     string    // Parent directory
	ModTime time.Time // Last modification time, zero when not stat'ed
}

// NewFile builds a File handle from a path. The path is cleaned but not resolved
// against the working directory; callers pass absolute paths.
func NewFile(path string) File {
	path = filepath.Clean(path)
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return File{
		Path: path,
		Base: strings.TrimSuffix(name, ext),
		Ext:  ext,
		Dir:  filepath.Dir(path),
	}
}

// Name returns the file name with extension.
func (f File) Name() string {
	return f.Base + f.Ext
}

// IsPhoto reports whether the extension is a recognized photo type.
// Only ".jpg" is recognized, compared case-insensitively.
func IsPhoto(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".jpg")
}
