package release

import (
	"errors"
	"io/fs"

	"github.com/openinvoice/relver/pkg/manifest"
)

// FileState classifies one tracked file during verification.
type FileState string

const (
	// StateOK means the file on disk matches its manifest entry.
	StateOK FileState = "ok"
	// StateModified means the file exists but its digest or size differs
	// from the manifest entry.
	StateModified FileState = "modified"
	// StateMissing means the file does not exist on disk.
	StateMissing FileState = "missing"
	// StateUnrecorded means the file is tracked but has no manifest entry.
	StateUnrecorded FileState = "unrecorded"
)

// FileStatus is the verification outcome for one tracked file.
type FileStatus struct {
	Name  string
	State FileState

	// WantSHA256 and WantSize come from the manifest entry; empty/zero for
	// unrecorded files.
	WantSHA256 string
	WantSize   int64

	// GotSHA256 and GotSize come from the file on disk; empty/zero for
	// missing files.
	GotSHA256 string
	GotSize   int64
}

// VerifyResult reports the manifest version and the per-file comparison.
type VerifyResult struct {
	Version string
	Files   []FileStatus
}

// Clean reports whether every tracked file matched its manifest entry.
func (r *VerifyResult) Clean() bool {
	for _, f := range r.Files {
		if f.State != StateOK {
			return false
		}
	}

	return true
}

// Verify recomputes the digest and size of every tracked file and compares
// them against the manifest on disk. A missing manifest is an error; a
// missing or drifted tracked file is reported in the result, not as an
// error.
func (u *Updater) Verify() (*VerifyResult, error) {
	m, err := manifest.Load(u.ManifestPath())
	if err != nil {
		return nil, err
	}

	res := &VerifyResult{Version: m.Version}

	for _, name := range u.TrackedFiles {
		status := FileStatus{Name: name}

		want, recorded := m.Files[name]
		if recorded {
			status.WantSHA256 = want.SHA256
			status.WantSize = want.Size
		}

		got, err := u.fileInfo(name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			status.State = StateMissing
		case err != nil:
			return nil, err
		default:
			status.GotSHA256 = got.SHA256
			status.GotSize = got.Size

			switch {
			case !recorded:
				status.State = StateUnrecorded
			case got == want:
				status.State = StateOK
			default:
				status.State = StateModified
			}
		}

		res.Files = append(res.Files, status)
	}

	return res, nil
}
