// Package conf loads photo-curator settings from flags, environment, a YAML
// file and built-in defaults, in that order of precedence.
package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. PHOTO_CURATOR_MEDIA_ROOT.
const EnvPrefix = "PHOTO_CURATOR"

// ConfigName is the config file base name searched for when none is given.
const ConfigName = "photo-curator"

// Settings is the full configuration.
type Settings struct {
	MediaRoot    string `mapstructure:"media_root" yaml:"media_root"`       // Managed library root
	PollInterval int    `mapstructure:"poll_interval" yaml:"poll_interval"` // Minutes between import batches

	Watch     WatchSettings     `mapstructure:"watch" yaml:"watch"`
	Thumbnail ThumbnailSettings `mapstructure:"thumbnail" yaml:"thumbnail"`
	Catalog   CatalogSettings   `mapstructure:"catalog" yaml:"catalog"`
	Log       LogSettings       `mapstructure:"log" yaml:"log"`
	Metrics   MetricsSettings   `mapstructure:"metrics" yaml:"metrics"`
}

// WatchSettings controls the polling loop.
type WatchSettings struct {
	Promote bool `mapstructure:"promote" yaml:"promote"` // Promote annotated photos before each batch
}

// ThumbnailSettings controls derivative generation.
type ThumbnailSettings struct {
	Size    int `mapstructure:"size" yaml:"size"`       // Side of the square bounding box
	Quality int `mapstructure:"quality" yaml:"quality"` // JPEG quality 1-100
}

// CatalogSettings selects the catalog backend.
type CatalogSettings struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // sqlite or csv
	Path   string `mapstructure:"path" yaml:"path"`     // Empty derives a path under the media root
}

// LogSettings configures logging.
type LogSettings struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Listen string `mapstructure:"listen" yaml:"listen"` // e.g. ":9090"; empty disables
}

// Interval returns the poll interval as a duration.
func (s *Settings) Interval() time.Duration {
	return time.Duration(s.PollInterval) * time.Minute
}

// Options tells Load where to look.
type Options struct {
	ConfigFile  string   // explicit config file; empty searches SearchPaths
	SearchPaths []string // directories searched for photo-curator.yaml
	EnvFile     string   // .env file loaded before reading the environment; empty skips
}

// DefaultSearchPaths returns the working directory and the user config directory.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigName))
	}
	return paths
}

// Load reads settings into a fresh Settings using v. Flags must already be
// bound to v by the caller.
func Load(v *viper.Viper, opts Options) (*Settings, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", opts.EnvFile, err)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		for _, p := range opts.SearchPaths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := settings.Normalize(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Normalize makes the media root absolute and derives the catalog path.
func (s *Settings) Normalize() error {
	s.Catalog.Driver = strings.ToLower(strings.TrimSpace(s.Catalog.Driver))
	if s.Catalog.Driver == "" {
		s.Catalog.Driver = "sqlite"
	}
	s.Log.Format = strings.ToLower(s.Log.Format)
	if s.MediaRoot == "" {
		return nil
	}
	abs, err := filepath.Abs(s.MediaRoot)
	if err != nil {
		return &ValidationError{Key: "media_root", Err: err}
	}
	s.MediaRoot = filepath.Clean(abs)

	if s.Catalog.Path == "" {
		name := "catalog.db"
		if s.Catalog.Driver == "csv" {
			name = "catalog.csv"
		}
		s.Catalog.Path = filepath.Join(s.MediaRoot, "_catalog", name)
	}
	return nil
}
