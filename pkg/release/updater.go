// Package release implements the parser release operations: bumping the
// package version with a regenerated checksum manifest, and verifying the
// manifest against the tracked files on disk.
package release

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/blang/semver/v4"

	"github.com/openinvoice/relver/pkg/manifest"
)

// DefaultManifestName is the manifest filename within a parser package.
const DefaultManifestName = "parser_version.json"

// DefaultTrackedFiles is the fixed set of parser sources recorded in the
// manifest when no config overrides it.
var DefaultTrackedFiles = []string{"parse.py", "custom_parsers.py"}

var ErrReadTrackedFile = errors.New("failed to read tracked file")

// defaultVersion seeds packages that have no manifest yet.
var defaultVersion = semver.MustParse("1.0.0")

// Updater regenerates the release manifest of a single parser package.
type Updater struct {
	// BaseDir is the parser package directory. The manifest and all tracked
	// files are resolved relative to it.
	BaseDir string

	// ManifestName is the manifest filename under BaseDir.
	ManifestName string

	// TrackedFiles are the filenames recorded in the manifest, relative to
	// BaseDir.
	TrackedFiles []string
}

// New creates an [Updater] for the parser package rooted at baseDir, tracking
// the default manifest and file set.
func New(baseDir string) *Updater {
	return &Updater{
		BaseDir:      baseDir,
		ManifestName: DefaultManifestName,
		TrackedFiles: slices.Clone(DefaultTrackedFiles),
	}
}

// BumpResult reports a completed version bump.
type BumpResult struct {
	// OldVersion is the version recorded before the bump, or "1.0.0" when no
	// manifest existed.
	OldVersion string

	// NewVersion is the version recorded by the bump.
	NewVersion string

	// Manifest is the document that was written.
	Manifest *manifest.Manifest
}

// Bump derives the next release version, recomputes the digest and size of
// every tracked file, and replaces the manifest.
//
// An explicit version, when non-empty, is recorded verbatim as the new
// version with no format check. Otherwise the current version must be a
// numeric major.minor.patch triple and its patch component is incremented;
// a manifest whose version cannot be parsed yields
// [manifest.ErrInvalidVersion] rather than a silently defaulted bump.
//
// All tracked files are read before anything is written. Any read failure
// aborts the bump with the existing manifest untouched.
func (u *Updater) Bump(explicit string) (*BumpResult, error) {
	current, err := u.currentVersion()
	if err != nil {
		return nil, err
	}

	next := explicit
	if next == "" {
		v, err := current.SemVer()
		if err != nil {
			return nil, err
		}

		next = nextPatch(v).String()
	}

	files, err := u.collectFiles()
	if err != nil {
		return nil, err
	}

	m := manifest.New(next, time.Now(), files)
	if err := m.Write(u.ManifestPath()); err != nil {
		return nil, err
	}

	slog.Debug("wrote manifest",
		slog.String("path", u.ManifestPath()),
		slog.String("version", next),
	)

	return &BumpResult{
		OldVersion: current.Version,
		NewVersion: next,
		Manifest:   m,
	}, nil
}

// ManifestPath returns the full path of the manifest file.
func (u *Updater) ManifestPath() string {
	return filepath.Join(u.BaseDir, u.ManifestName)
}

// currentVersion loads the existing manifest, substituting a default
// manifest at version 1.0.0 when none exists yet.
func (u *Updater) currentVersion() (*manifest.Manifest, error) {
	m, err := manifest.Load(u.ManifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		return &manifest.Manifest{Version: defaultVersion.String()}, nil
	}
	if err != nil {
		return nil, err
	}

	return m, nil
}

// collectFiles computes the digest and size of every tracked file,
// fail-fast on the first unreadable file.
func (u *Updater) collectFiles() (map[string]manifest.FileInfo, error) {
	files := make(map[string]manifest.FileInfo, len(u.TrackedFiles))

	for _, name := range u.TrackedFiles {
		info, err := u.fileInfo(name)
		if err != nil {
			return nil, err
		}

		files[name] = info
	}

	return files, nil
}

func (u *Updater) fileInfo(name string) (manifest.FileInfo, error) {
	path := filepath.Join(u.BaseDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return manifest.FileInfo{}, fmt.Errorf("%w %q: %w", ErrReadTrackedFile, path, err)
	}

	sum := sha256.Sum256(data)

	slog.Debug("hashed tracked file",
		slog.String("file", name),
		slog.Int("size", len(data)),
	)

	return manifest.FileInfo{
		SHA256: hex.EncodeToString(sum[:]),
		Size:   int64(len(data)),
	}, nil
}

// nextPatch returns v with its patch component incremented. Minor and major
// never roll over.
func nextPatch(v semver.Version) semver.Version {
	return semver.Version{
		Major: v.Major,
		Minor: v.Minor,
		Patch: v.Patch + 1,
	}
}
