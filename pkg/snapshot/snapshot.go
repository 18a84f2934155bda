// Package snapshot captures the current state of a filesystem path into a
// session directory so it can be restored later.
//
// Classification order matters: a symlink is detected before the
// directory and file checks, so a symlink to a directory is preserved as
// a link rather than dereferenced and copied.
package snapshot

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/logging"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// Snapshotter copies paths into a session's snapshot directory
type Snapshotter struct {
	fs     types.FS
	logger zerolog.Logger
	dryRun bool
}

// New creates a Snapshotter. With dryRun set it classifies paths and
// reports intended artifacts without writing anything.
func New(fs types.FS, dryRun bool) *Snapshotter {
	return &Snapshotter{
		fs:     fs,
		logger: logging.GetLogger("snapshot"),
		dryRun: dryRun,
	}
}

// Snapshot copies path into snapshotsDir and returns the artifact
// location and the path's type.
//
// The artifact keeps the original's full path nested under snapshotsDir
// (/home/u/.zshrc becomes <snapshotsDir>/home/u/.zshrc), so artifact
// names are collision-free by construction.
//
// A missing path returns an ErrNotFound coded error; callers treat that
// as "nothing to back up", not a failure. Any copy error is reported as
// ErrSnapshotFailed and must not be registered in a manifest.
func (s *Snapshotter) Snapshot(path, snapshotsDir string) (string, types.PathType, error) {
	info, err := s.fs.Lstat(path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return "", "", errors.Newf(errors.ErrNotFound, "nothing to back up at %s", path)
		}
		return "", "", errors.Wrapf(err, errors.ErrSnapshotFailed, "failed to inspect %s", path)
	}

	pathType := classify(info)
	artifact := artifactPath(snapshotsDir, path)

	s.logger.Debug().
		Str("path", path).
		Str("type", string(pathType)).
		Str("artifact", artifact).
		Bool("dryRun", s.dryRun).
		Msg("Snapshotting path")

	if s.dryRun {
		return artifact, pathType, nil
	}

	switch pathType {
	case types.TypeSymlink:
		err = s.snapshotSymlink(path, artifact)
	case types.TypeDirectory:
		err = filesystem.CopyTree(s.fs, path, artifact)
	default:
		err = filesystem.CopyFile(s.fs, path, artifact)
	}
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrSnapshotFailed, "failed to snapshot %s", path)
	}

	return artifact, pathType, nil
}

// snapshotSymlink stores the link's target string as a small text
// artifact. The pointed-to data is never copied; a dangling target is
// fine.
func (s *Snapshotter) snapshotSymlink(path, artifact string) error {
	target, err := s.fs.Readlink(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read link target of %s", path)
	}
	if err := s.fs.MkdirAll(filepath.Dir(artifact), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create artifact directory for %s", artifact)
	}
	if err := s.fs.WriteFile(artifact, []byte(target), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to store link target in %s", artifact)
	}
	return nil
}

func classify(info os.FileInfo) types.PathType {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return types.TypeSymlink
	case info.IsDir():
		return types.TypeDirectory
	default:
		return types.TypeFile
	}
}

// artifactPath nests the original path under the snapshots directory
func artifactPath(snapshotsDir, original string) string {
	rel := original
	if filepath.IsAbs(rel) {
		rel = rel[len(string(filepath.Separator)):]
	}
	return filepath.Join(snapshotsDir, rel)
}
