// Package catalog stores imported photos keyed by their canonical path.
//
// The pipeline only ever calls Upsert; Get exists for tooling and tests.
// Upserting the same record twice leaves the store unchanged.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"photo-curator/internal/domain"
)

// Store is a catalog backend.
type Store interface {
	Upsert(ctx context.Context, rec domain.CatalogRecord) error
	Get(ctx context.Context, path string) (domain.CatalogRecord, bool, error)
	Close() error
}

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverCSV    = "csv"
)

// Open returns the store for driver at path.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverCSV:
		return NewManifest(path), nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", driver)
	}
}

// canonical is the key a record is stored under.
func canonical(path string) string {
	return filepath.Clean(path)
}
