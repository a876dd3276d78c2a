package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a file could not complete its import.
type ErrorKind string

const (
	KindMetadataUnreadable ErrorKind = "metadata_unreadable"
	KindPathNotUnderRoot   ErrorKind = "path_not_under_root"
	KindMoveFailed         ErrorKind = "move_failed"
	KindResizeFailed       ErrorKind = "resize_failed"
	KindCatalogWriteFailed ErrorKind = "catalog_write_failed"
)

// Error is a classified pipeline error carrying the offending path.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewError wraps err with a kind and path.
func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path)
}

// KindOf extracts the kind from err, or "" when err is not classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
