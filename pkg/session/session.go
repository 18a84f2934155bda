// Package session owns the lifecycle of one backup session: one installer
// run, one session directory, one manifest.
package session

import (
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/logging"
	"github.com/arthur-debert/dotbak/pkg/manifest"
	"github.com/arthur-debert/dotbak/pkg/paths"
	"github.com/arthur-debert/dotbak/pkg/snapshot"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// IDTimeFormat makes session ids lexically sortable by creation time,
// which is what the registry's "latest" lookup relies on.
const IDTimeFormat = "20060102-150405"

// Service begins sessions and registers backups into them
type Service struct {
	fs       types.FS
	paths    *paths.Paths
	store    *manifest.Store
	snapper  *snapshot.Snapshotter
	logger   zerolog.Logger
	dryRun   bool
	fallback string

	// now is swappable for deterministic ids in tests
	now func() time.Time
}

// NewService wires a session service. fallbackSuffix is used by the
// degraded rename-in-place backup when the registry is unusable.
func NewService(fs types.FS, p *paths.Paths, store *manifest.Store, snapper *snapshot.Snapshotter, fallbackSuffix string, dryRun bool) *Service {
	return &Service{
		fs:       fs,
		paths:    p,
		store:    store,
		snapper:  snapper,
		logger:   logging.GetLogger("session"),
		dryRun:   dryRun,
		fallback: fallbackSuffix,
		now:      time.Now,
	}
}

// WithClock replaces the service's clock, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Begin starts a new session labeled label. The id is
// label + "_" + timestamp; the session directory is created right away,
// holding the freshly initialized manifest.
func (s *Service) Begin(label string) (*types.Session, error) {
	if label == "" {
		return nil, errors.New(errors.ErrInvalidInput, "session label must not be empty")
	}

	createdAt := s.now()
	id := label + "_" + createdAt.Format(IDTimeFormat)

	sess := &types.Session{
		ID:        id,
		Dir:       s.paths.SessionDir(id),
		CreatedAt: createdAt,
		Context: types.SessionContext{
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			DotfilesDir: s.paths.DotfilesRoot(),
		},
	}

	if err := s.store.Initialize(id, createdAt, sess.Context); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session", id).
		Str("dir", sess.Dir).
		Bool("dryRun", s.dryRun).
		Msg("Session started")
	return sess, nil
}

// RegisterBackup snapshots path into the session and appends a manifest
// entry for it.
//
// Each registration snapshots into its own numbered subdirectory of the
// session's snapshot area, so registering the same path twice records
// two entries with two independent artifacts; the earlier snapshot is
// never overwritten.
//
// A missing path yields NothingToBackUp with no manifest entry. A failed
// snapshot yields BackupFailed with the reason; no entry is recorded for
// a failed snapshot, so the manifest only ever names restorable backups.
func (s *Service) RegisterBackup(sess *types.Session, path string) (types.BackupOutcome, error) {
	dir, err := s.snapshotDir(sess.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Cannot place snapshot")
		return types.BackupFailed, err
	}

	artifact, pathType, err := s.snapper.Snapshot(path, dir)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			s.logger.Debug().Str("path", path).Msg("Nothing to back up")
			return types.NothingToBackUp, nil
		}
		s.logger.Error().Err(err).Str("path", path).Msg("Snapshot failed")
		return types.BackupFailed, err
	}

	entry := types.ManifestEntry{Original: path, Backup: artifact, Type: pathType}
	if err := s.store.Append(sess.ID, entry); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Manifest append failed")
		return types.BackupFailed, err
	}

	s.logger.Info().
		Str("session", sess.ID).
		Str("path", path).
		Str("type", string(pathType)).
		Msg("Backup registered")
	return types.BackedUp, nil
}

// snapshotDir returns the snapshot directory for the session's next
// registration: the entry count so far, as a subdirectory of the
// session's snapshot area. The ordinal keeps repeat registrations of one
// path from colliding on the same artifact.
func (s *Service) snapshotDir(sessionID string) (string, error) {
	entries, err := s.store.ReadAll(sessionID)
	if err != nil {
		// a dry-run Begin writes no manifest, so there is nothing to
		// count yet
		if s.dryRun && errors.IsErrorCode(err, errors.ErrManifestUninitialized) {
			entries = nil
		} else {
			return "", err
		}
	}
	return filepath.Join(s.paths.SnapshotsDir(sessionID), strconv.Itoa(len(entries))), nil
}

// FallbackBackup renames path aside with the configured suffix. It is the
// degraded, registry-less recovery path for installers that could not
// begin a session: the result survives on disk but no manifest tracks it,
// so rollback cannot restore it automatically.
func (s *Service) FallbackBackup(path string) (string, error) {
	if !filesystem.Exists(s.fs, path) {
		return "", errors.Newf(errors.ErrNotFound, "nothing to back up at %s", path)
	}

	aside := path + s.fallback

	if s.dryRun {
		s.logger.Info().Str("path", path).Str("aside", aside).Msg("Dry run: would rename aside")
		return aside, nil
	}

	if err := s.fs.Rename(path, aside); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to move %s aside", path)
	}

	s.logger.Warn().
		Str("path", path).
		Str("aside", aside).
		Msg("Registry unavailable, moved aside without manifest tracking")
	return aside, nil
}
