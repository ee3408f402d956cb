// Package manifest defines the parser release manifest document and its
// on-disk representation.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/blang/semver/v4"
	"github.com/google/uuid"
)

// MinAppVersion is the minimum application version recorded in every written
// manifest. It is a fixed constant, never round-tripped from a prior
// manifest.
const MinAppVersion = "1.0.0"

var (
	ErrReadManifest    = errors.New("failed to read manifest")
	ErrWriteManifest   = errors.New("failed to write manifest")
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrInvalidVersion  = errors.New("invalid manifest version")
)

// FileInfo records the content digest and size of one tracked file.
type FileInfo struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest describes one release of a parser package: its version and the
// checksums of the source files it tracks.
type Manifest struct {
	Version       string              `json:"version"`
	Updated       time.Time           `json:"updated"`
	Files         map[string]FileInfo `json:"files"`
	MinAppVersion string              `json:"minAppVersion"`
}

// New creates a manifest for the given version and tracked files. The
// updated timestamp is normalized to whole-second UTC so that it serializes
// as an ISO-8601 timestamp with a Z suffix.
func New(version string, updated time.Time, files map[string]FileInfo) *Manifest {
	return &Manifest{
		Version:       version,
		Updated:       updated.UTC().Truncate(time.Second),
		Files:         files,
		MinAppVersion: MinAppVersion,
	}
}

// Load reads and decodes the manifest at path. A missing file is reported
// via the wrapped [fs.ErrNotExist] from the underlying read.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrReadManifest, path, err)
	}

	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidManifest, path, err)
	}

	return m, nil
}

// SemVer parses the manifest version as a strict numeric triple. Versions
// carrying pre-release or build metadata are rejected.
func (m *Manifest) SemVer() (semver.Version, error) {
	v, err := semver.Parse(m.Version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("%w %q: %w", ErrInvalidVersion, m.Version, err)
	}

	if len(v.Pre) > 0 || len(v.Build) > 0 {
		return semver.Version{}, fmt.Errorf(
			"%w %q: version must be a numeric major.minor.patch triple", ErrInvalidVersion, m.Version,
		)
	}

	return v, nil
}

// Encode renders the manifest JSON document exactly as written to disk.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	return append(data, '\n'), nil
}

// Write encodes the manifest and replaces the file at path atomically, by
// writing a uniquely named temporary file in the same directory and renaming
// it into place. An interrupted write never leaves a truncated manifest.
func (m *Manifest) Write(path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.New().String())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w %q: %w", ErrWriteManifest, path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			slog.Error("failed to remove temporary manifest",
				slog.Any("err", rmErr),
			)
		}

		return fmt.Errorf("%w %q: %w", ErrWriteManifest, path, err)
	}

	return nil
}
