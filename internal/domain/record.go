package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category is a date partition under the media root, e.g. 2017/3/14.
// Segments are plain decimals without zero padding.
type Category []int

// CategoryFor derives the year/month/day partition of a capture time.
func CategoryFor(t time.Time) Category {
	return Category{t.Year(), int(t.Month()), t.Day()}
}

// ParseCategory parses a slash separated relative path of numeric segments.
func ParseCategory(rel string) (Category, error) {
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return nil, fmt.Errorf("empty category")
	}
	parts := strings.Split(rel, "/")
	c := make(Category, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("category segment %q is not numeric", p)
		}
		c = append(c, n)
	}
	return c, nil
}

// Segments renders each partition level as a decimal string.
func (c Category) Segments() []string {
	out := make([]string, len(c))
	for i, n := range c {
		out[i] = strconv.Itoa(n)
	}
	return out
}

func (c Category) String() string {
	return strings.Join(c.Segments(), "/")
}

// CatalogRecord is what gets handed to the catalog after a successful import.
// Path is the canonical key.
type CatalogRecord struct {
	Path        string    // Absolute path of the imported photo
	Category    string    // e.g. "2017/3/14"
	Name        string    // File name with extension
	Base        string    // File name without extension
	Keywords    []string  // Tokens derived from Base
	CapturedAt  time.Time // DateTimeOriginal
	Orientation int       // Extracted, never applied
	Thumbnail   string    // Absolute path of the derivative
	Size        int64     // Bytes
	Fingerprint string    // MD5 of the first 64KB
	ImportedAt  time.Time
}
