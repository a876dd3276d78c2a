package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"photo-curator/internal/fsx"
)

const starterHeader = `# photo-curator configuration
# Every key can be overridden with PHOTO_CURATOR_<KEY>, dots become underscores
# (e.g. PHOTO_CURATOR_CATALOG_DRIVER=csv).
`

// WriteDefault writes s as a starter YAML config at path. An existing file is
// left alone and reported as os.ErrExist.
func WriteDefault(path string, s Settings) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s: %w", path, os.ErrExist)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	data = append([]byte(starterHeader), data...)
	return fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), data, 0o644)
}
