package release_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinvoice/relver/pkg/manifest"
	"github.com/openinvoice/relver/pkg/release"
)

const (
	parseSource   = "def parse(pdf):\n    return []\n"
	customSource  = "VENDORS = {}\n"
	parseFileName = "parse.py"
)

// writeTrackedFiles populates dir with the default tracked file set.
func writeTrackedFiles(t *testing.T, dir string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "parse.py"), []byte(parseSource), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom_parsers.py"), []byte(customSource), 0o600))
}

// writeManifest seeds dir with a manifest at the given version.
func writeManifest(t *testing.T, dir, version string) {
	t.Helper()

	m := manifest.New(version, time.Now(), map[string]manifest.FileInfo{})
	require.NoError(t, m.Write(filepath.Join(dir, release.DefaultManifestName)))
}

func TestBump_NoManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	res, err := release.New(dir).Bump("")
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", res.OldVersion)
	assert.Equal(t, "1.0.1", res.NewVersion)

	got, err := manifest.Load(filepath.Join(dir, release.DefaultManifestName))
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", got.Version)
	assert.Equal(t, manifest.MinAppVersion, got.MinAppVersion)
}

func TestBump_PatchIncrement(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		current string
		want    string
	}{
		"from zero":   {current: "0.0.0", want: "0.0.1"},
		"mid series":  {current: "1.2.3", want: "1.2.4"},
		"large parts": {current: "10.20.30", want: "10.20.31"},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeTrackedFiles(t, dir)
			writeManifest(t, dir, tc.current)

			res, err := release.New(dir).Bump("")
			require.NoError(t, err)

			assert.Equal(t, tc.current, res.OldVersion)
			assert.Equal(t, tc.want, res.NewVersion)
		})
	}
}

func TestBump_ExplicitVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)
	writeManifest(t, dir, "1.2.3")

	res, err := release.New(dir).Bump("2.0.0")
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", res.OldVersion)
	assert.Equal(t, "2.0.0", res.NewVersion)
}

func TestBump_ExplicitVersionIsVerbatim(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	// Explicit versions are recorded as given, with no format check.
	res, err := release.New(dir).Bump("not-a-version")
	require.NoError(t, err)
	assert.Equal(t, "not-a-version", res.NewVersion)

	got, err := manifest.Load(filepath.Join(dir, release.DefaultManifestName))
	require.NoError(t, err)
	assert.Equal(t, "not-a-version", got.Version)
}

func TestBump_TwiceIncrementsByTwo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)
	writeManifest(t, dir, "1.2.3")

	u := release.New(dir)

	_, err := u.Bump("")
	require.NoError(t, err)

	res, err := u.Bump("")
	require.NoError(t, err)

	assert.Equal(t, "1.2.5", res.NewVersion)
}

func TestBump_FileMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	res, err := release.New(dir).Bump("")
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(parseSource))

	info, ok := res.Manifest.Files[parseFileName]
	require.True(t, ok)
	assert.Equal(t, hex.EncodeToString(sum[:]), info.SHA256)
	assert.Equal(t, int64(len(parseSource)), info.Size)

	require.Contains(t, res.Manifest.Files, "custom_parsers.py")
	assert.Len(t, res.Manifest.Files, 2)
}

func TestBump_MissingTrackedFile(t *testing.T) {
	t.Parallel()

	t.Run("no prior manifest", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		_, err := release.New(dir).Bump("")
		require.ErrorIs(t, err, release.ErrReadTrackedFile)

		assert.NoFileExists(t, filepath.Join(dir, release.DefaultManifestName))
	})

	t.Run("prior manifest untouched", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeManifest(t, dir, "1.2.3")

		path := filepath.Join(dir, release.DefaultManifestName)
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		_, err = release.New(dir).Bump("")
		require.ErrorIs(t, err, release.ErrReadTrackedFile)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestBump_InvalidManifestVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	path := filepath.Join(dir, release.DefaultManifestName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "abc"}`), 0o600))

	u := release.New(dir)

	// Incrementing a garbled version is an explicit error, not a silent
	// fallback to 1.0.0.
	_, err := u.Bump("")
	require.ErrorIs(t, err, manifest.ErrInvalidVersion)

	// An explicit version does not depend on the recorded one and can
	// repair the manifest.
	res, err := u.Bump("2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", res.NewVersion)
}

func TestBump_UpdatedTimestamp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	before := time.Now().UTC().Truncate(time.Second)

	res, err := release.New(dir).Bump("")
	require.NoError(t, err)

	after := time.Now().UTC()

	assert.Equal(t, time.UTC, res.Manifest.Updated.Location())
	assert.False(t, res.Manifest.Updated.Before(before))
	assert.False(t, res.Manifest.Updated.After(after))
}

func TestVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	u := release.New(dir)

	_, err := u.Bump("")
	require.NoError(t, err)

	res, err := u.Verify()
	require.NoError(t, err)
	assert.True(t, res.Clean())
	assert.Equal(t, "1.0.1", res.Version)

	for _, f := range res.Files {
		assert.Equal(t, release.StateOK, f.State, f.Name)
	}
}

func TestVerify_Modified(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	u := release.New(dir)

	_, err := u.Bump("")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, parseFileName), []byte("changed\n"), 0o600))

	res, err := u.Verify()
	require.NoError(t, err)
	assert.False(t, res.Clean())

	states := map[string]release.FileState{}
	for _, f := range res.Files {
		states[f.Name] = f.State
	}

	assert.Equal(t, release.StateModified, states[parseFileName])
	assert.Equal(t, release.StateOK, states["custom_parsers.py"])
}

func TestVerify_Missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	u := release.New(dir)

	_, err := u.Bump("")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, parseFileName)))

	res, err := u.Verify()
	require.NoError(t, err)
	assert.False(t, res.Clean())

	states := map[string]release.FileState{}
	for _, f := range res.Files {
		states[f.Name] = f.State
	}

	assert.Equal(t, release.StateMissing, states[parseFileName])
}

func TestVerify_Unrecorded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	// Manifest with no file entries at all.
	writeManifest(t, dir, "1.0.0")

	res, err := release.New(dir).Verify()
	require.NoError(t, err)
	assert.False(t, res.Clean())

	for _, f := range res.Files {
		assert.Equal(t, release.StateUnrecorded, f.State, f.Name)
	}
}

func TestVerify_NoManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrackedFiles(t, dir)

	_, err := release.New(dir).Verify()
	require.ErrorIs(t, err, manifest.ErrReadManifest)
}
