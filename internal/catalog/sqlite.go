package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"photo-curator/internal/domain"
	"photo-curator/internal/fsx"
)

// photoRow is the persisted form of a CatalogRecord.
type photoRow struct {
	Path        string    `gorm:"primaryKey"`
	Category    string    `gorm:"index"`
	Name        string    `gorm:"not null"`
	Base        string    `gorm:"not null"`
	Keywords    []string  `gorm:"serializer:json"`
	CapturedAt  time.Time `gorm:"index"`
	Orientation int
	Thumbnail   string
	Size        int64
	Fingerprint string `gorm:"index"`
	ImportedAt  time.Time
}

func (photoRow) TableName() string { return "photos" }

// SQLite is a catalog backed by a SQLite database through gorm.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if err := fsx.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite catalog: %w", err)
	}
	if err := db.AutoMigrate(&photoRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Upsert inserts rec or replaces the row with the same path.
func (s *SQLite) Upsert(ctx context.Context, rec domain.CatalogRecord) error {
	row := toRow(rec)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", row.Path, err)
	}
	return nil
}

// Get returns the record stored under path.
func (s *SQLite) Get(ctx context.Context, path string) (domain.CatalogRecord, bool, error) {
	var row photoRow
	err := s.db.WithContext(ctx).Where("path = ?", canonical(path)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CatalogRecord{}, false, nil
	}
	if err != nil {
		return domain.CatalogRecord{}, false, err
	}
	return fromRow(row), true, nil
}

// Count returns the number of catalogued photos.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&photoRow{}).Count(&n).Error
	return n, err
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(rec domain.CatalogRecord) photoRow {
	return photoRow{
		Path:        canonical(rec.Path),
		Category:    rec.Category,
		Name:        rec.Name,
		Base:        rec.Base,
		Keywords:    append([]string{}, rec.Keywords...),
		CapturedAt:  rec.CapturedAt.UTC(),
		Orientation: rec.Orientation,
		Thumbnail:   rec.Thumbnail,
		Size:        rec.Size,
		Fingerprint: rec.Fingerprint,
		ImportedAt:  rec.ImportedAt.UTC(),
	}
}

func fromRow(row photoRow) domain.CatalogRecord {
	return domain.CatalogRecord{
		Path:        row.Path,
		Category:    row.Category,
		Name:        row.Name,
		Base:        row.Base,
		Keywords:    row.Keywords,
		CapturedAt:  row.CapturedAt.UTC(),
		Orientation: row.Orientation,
		Thumbnail:   row.Thumbnail,
		Size:        row.Size,
		Fingerprint: row.Fingerprint,
		ImportedAt:  row.ImportedAt.UTC(),
	}
}
