// Package keywords encodes human-curated keywords into file names and back.
//
// The mapping is lossy on purpose: "sunset beach,cliff" and "sunset-beach-cliff"
// decode to the same tokens, and both encode to "sunset-beach-cliff".
package keywords

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var splitRE = regexp.MustCompile(`[ ,\-]`)

// annotatedRE is the "already annotated" heuristic: two or more letters,
// anything, a hyphen, then digits. Matched from the start of the name.
var annotatedRE = regexp.MustCompile(`^[A-Za-z]{2,}.*-[0-9]+`)

// FromName derives keyword tokens from a base name (no extension).
//
// The name is lower-cased and split on space, hyphen or comma; underscores
// inside a token become spaces; tokens of one character or less are dropped.
// Order is preserved and duplicates are kept.
func FromName(base string) []string {
	parts := splitRE.Split(strings.ToLower(base), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ReplaceAll(p, "_", " ")
		if utf8.RuneCountInString(p) <= 1 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ToName joins keywords with "-", turns spaces into underscores and lower-cases
// the result. A comma inside a keyword separates tokens just as FromName
// reads it, so it becomes "-" too.
func ToName(keywords []string) string {
	name := strings.Join(keywords, "-")
	name = strings.ReplaceAll(name, ",", "-")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

// HasKeywords reports whether base looks like a name produced by ResolveName.
// It is a heuristic with known false positives ("IMG-1234") and negatives
// ("x-1"); the process stage depends on exactly this behavior.
func HasKeywords(base string) bool {
	return annotatedRE.MatchString(base)
}

// ResolveName returns "<ToName(keywords)>-<n>.<ext>" for the smallest n >= 1
// that does not exist in dir. A missing dir counts as empty.
//
// The probe is bounded by the number of entries in dir, so it always terminates.
func ResolveName(dir string, keywords []string, ext string) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	stem := ToName(keywords)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	taken := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		taken[e.Name()] = struct{}{}
	}

	// len(taken)+1 candidates cannot all be taken.
	for n := 1; n <= len(taken)+1; n++ {
		candidate := fmt.Sprintf("%s-%d.%s", stem, n, ext)
		if _, ok := taken[candidate]; ok {
			continue
		}
		if _, err := os.Lstat(filepath.Join(dir, candidate)); err == nil {
			// Appeared after ReadDir.
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no free name for %q in %s", stem, dir)
}
