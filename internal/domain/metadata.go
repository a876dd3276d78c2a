package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tag groups and names read from a photo's embedded metadata.
const (
	GroupExif = "Exif"
	GroupRoot = "Root"
	GroupGPS  = "GPS"

	TagDateTimeOriginal = "DateTimeOriginal"
	TagOrientation      = "Orientation"
)

// CaptureLayout is the fixed textual format of DateTimeOriginal.
const CaptureLayout = "2006:01:02 15:04:05"

// Tags is the raw key/value structure produced by a metadata reader,
// grouped by IFD: tags["Exif"]["DateTimeOriginal"].
type Tags map[string]map[string]string

// Get returns the value of name in group, if present.
func (t Tags) Get(group, name string) (string, bool) {
	if t == nil {
		return "", false
	}
	g, ok := t[group]
	if !ok {
		return "", false
	}
	v, ok := g[name]
	return v, ok
}

// Set stores a value, creating the group when needed.
func (t Tags) Set(group, name, value string) {
	g, ok := t[group]
	if !ok {
		g = make(map[string]string)
		t[group] = g
	}
	g[name] = value
}

// Metadata is the part of a photo's tags the pipeline acts on.
type Metadata struct {
	CapturedAt  time.Time
	Orientation int // 0 when absent; EXIF values are 1..8
}

// ParseMetadata extracts capture time and orientation from tags.
// A missing or malformed DateTimeOriginal yields a MetadataUnreadable error.
// A malformed orientation is ignored rather than failing the file.
func ParseMetadata(path string, tags Tags) (Metadata, error) {
	if len(tags) == 0 {
		return Metadata{}, NewError(KindMetadataUnreadable, path, fmt.Errorf("no tags present"))
	}

	raw, ok := tags.Get(GroupExif, TagDateTimeOriginal)
	if !ok || strings.TrimSpace(raw) == "" {
		return Metadata{}, NewError(KindMetadataUnreadable, path, fmt.Errorf("%s.%s missing", GroupExif, TagDateTimeOriginal))
	}

	captured, err := time.Parse(CaptureLayout, strings.TrimSpace(raw))
	if err != nil {
		return Metadata{}, NewError(KindMetadataUnreadable, path, fmt.Errorf("parse %s %q: %w", TagDateTimeOriginal, raw, err))
	}

	md := Metadata{CapturedAt: captured}
	if v, ok := tags.Get(GroupRoot, TagOrientation); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			md.Orientation = n
		}
	}
	return md, nil
}
