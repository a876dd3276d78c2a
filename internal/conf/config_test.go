package conf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "curator.yaml")
	writeFile(t, cfg, `
media_root: `+filepath.Join(dir, "media")+`
poll_interval: 2
watch:
  promote: true
catalog:
  driver: CSV
log:
  format: json
`)

	s, err := Load(viper.New(), Options{ConfigFile: cfg})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "media"), s.MediaRoot)
	assert.Equal(t, 2*time.Minute, s.Interval())
	assert.True(t, s.Watch.Promote)
	assert.Equal(t, "csv", s.Catalog.Driver)
	assert.Equal(t, filepath.Join(dir, "media", "_catalog", "catalog.csv"), s.Catalog.Path)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, 300, s.Thumbnail.Size, "default kept")
	assert.Equal(t, 85, s.Thumbnail.Quality)
}

func TestLoad_SearchPathAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigName+".yaml"), "media_root: /from/file\npoll_interval: 9\n")

	t.Setenv("PHOTO_CURATOR_POLL_INTERVAL", "3")
	t.Setenv("PHOTO_CURATOR_THUMBNAIL_QUALITY", "70")

	s, err := Load(viper.New(), Options{SearchPaths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, "/from/file", s.MediaRoot)
	assert.Equal(t, 3, s.PollInterval, "env beats file")
	assert.Equal(t, 70, s.Thumbnail.Quality)
	assert.Equal(t, "sqlite", s.Catalog.Driver)
	assert.Equal(t, filepath.Join("/from/file", "_catalog", "catalog.db"), s.Catalog.Path)
}

func TestLoad_FlagsBeatEnv(t *testing.T) {
	t.Setenv("PHOTO_CURATOR_MEDIA_ROOT", "/from/env")
	v := viper.New()
	v.Set("media_root", "/from/flag")

	s, err := Load(v, Options{SearchPaths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", s.MediaRoot)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "PHOTO_CURATOR_MEDIA_ROOT=/from/dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("PHOTO_CURATOR_MEDIA_ROOT") })

	s, err := Load(viper.New(), Options{SearchPaths: []string{dir}, EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", s.MediaRoot)
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	t.Setenv("PHOTO_CURATOR_MEDIA_ROOT", "/m")
	dir := t.TempDir()
	_, err := Load(viper.New(), Options{SearchPaths: []string{dir}, EnvFile: filepath.Join(dir, ".env")})
	assert.NoError(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_RequiresMediaRoot(t *testing.T) {
	_, err := Load(viper.New(), Options{SearchPaths: []string{t.TempDir()}})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "media_root", ve.Key)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantKey string
	}{
		{"interval below one", func(s *Settings) { s.PollInterval = 0 }, "poll_interval"},
		{"quality out of range", func(s *Settings) { s.Thumbnail.Quality = 120 }, "thumbnail.quality"},
		{"size zero", func(s *Settings) { s.Thumbnail.Size = 0 }, "thumbnail.size"},
		{"unknown driver", func(s *Settings) { s.Catalog.Driver = "postgres" }, "catalog.driver"},
		{"unknown format", func(s *Settings) { s.Log.Format = "xml" }, "log.format"},
		{"unknown level", func(s *Settings) { s.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			s.MediaRoot = "/m"
			tt.mutate(&s)

			err := s.Validate()
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantKey, ve.Key)
		})
	}

	s := Default()
	s.MediaRoot = "/m"
	assert.NoError(t, s.Validate())
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "photo-curator.yaml")
	s := Default()
	s.MediaRoot = "/photos"

	require.NoError(t, WriteDefault(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Settings
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	err = WriteDefault(path, s)
	assert.ErrorIs(t, err, os.ErrExist)

	loaded, err := Load(viper.New(), Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "/photos", loaded.MediaRoot)
}
