package conf

import (
	"github.com/spf13/viper"
)

// SetDefaults registers the default value of every key on v.
// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("media_root", d.MediaRoot)
	v.SetDefault("poll_interval", d.PollInterval)

	v.SetDefault("watch.promote", d.Watch.Promote)

	v.SetDefault("thumbnail.size", d.Thumbnail.Size)
	v.SetDefault("thumbnail.quality", d.Thumbnail.Quality)

	v.SetDefault("catalog.driver", d.Catalog.Driver)
	v.SetDefault("catalog.path", d.Catalog.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)

	v.SetDefault("metrics.listen", d.Metrics.Listen)
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		PollInterval: 5,
		Thumbnail: ThumbnailSettings{
			Size:    300,
			Quality: 85,
		},
		Catalog: CatalogSettings{
			Driver: "sqlite",
		},
		Log: LogSettings{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
