package conf

import (
	"errors"
	"fmt"

	"photo-curator/internal/logger"
)

// ValidationError reports an invalid configuration key.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks every key and returns all problems joined.
func (s *Settings) Validate() error {
	var errs []error
	add := func(key, format string, args ...any) {
		errs = append(errs, &ValidationError{Key: key, Err: fmt.Errorf(format, args...)})
	}

	if s.MediaRoot == "" {
		add("media_root", "must be set")
	}
	if s.PollInterval < 1 {
		add("poll_interval", "must be at least 1 minute, got %d", s.PollInterval)
	}
	if s.Thumbnail.Size < 1 {
		add("thumbnail.size", "must be positive, got %d", s.Thumbnail.Size)
	}
	if s.Thumbnail.Quality < 1 || s.Thumbnail.Quality > 100 {
		add("thumbnail.quality", "must be between 1 and 100, got %d", s.Thumbnail.Quality)
	}
	switch s.Catalog.Driver {
	case "sqlite", "csv":
	default:
		add("catalog.driver", "must be sqlite or csv, got %q", s.Catalog.Driver)
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		add("log.format", "must be text or json, got %q", s.Log.Format)
	}
	if _, err := logger.ParseLevel(s.Log.Level); err != nil {
		add("log.level", "%v", err)
	}

	return errors.Join(errs...)
}
