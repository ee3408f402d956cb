package release

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	ErrReadConfig    = errors.New("failed to read config")
	ErrInvalidConfig = errors.New("invalid config")
)

// Config overrides the fixed manifest name and tracked-file set, for parser
// packages that track more or differently named sources.
type Config struct {
	Manifest string   `yaml:"manifest"`
	Files    []string `yaml:"files"`
}

// LoadConfig reads and decodes the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrReadConfig, path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidConfig, path, err)
	}

	return cfg, nil
}

// Apply overlays the set fields of the config onto the updater. Unset fields
// keep the updater's defaults.
func (c *Config) Apply(u *Updater) {
	if c.Manifest != "" {
		u.ManifestName = c.Manifest
	}

	if len(c.Files) > 0 {
		u.TrackedFiles = slices.Clone(c.Files)
	}
}
